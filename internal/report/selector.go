package report

import (
	"context"
	"fmt"

	"github.com/rojournal-dev/rojournal/internal/model"
)

// selectInvoices determines the invoice set for a period: in-period
// invoices, prior-period unpaid cash-basis carry-overs, and invoices
// settled through the cash-basis clearing journal inside the period.
// The union is fetched as one query so the (date, number) sort order
// is stable and free of duplicates.
func (s *Service) selectInvoices(ctx context.Context, p Params) ([]model.Move, error) {
	types := p.JournalType.InvoiceTypes()

	inPeriod, err := s.src.FetchInvoices(ctx, InvoiceFilter{
		CompanyID: p.CompanyID,
		Types:     types,
		State:     model.StatePosted,
		DateFrom:  p.DateFrom,
		DateTo:    p.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching period invoices: %w", err)
	}

	carryOver, err := s.src.FetchInvoices(ctx, InvoiceFilter{
		CompanyID:        p.CompanyID,
		Types:            types,
		State:            model.StatePosted,
		DateBefore:       p.DateFrom,
		PaymentStates:    []model.PaymentState{model.PaymentPartial, model.PaymentNotPaid},
		RequireCashBasis: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching carry-over invoices: %w", err)
	}

	settled, err := s.settledInvoiceIDs(ctx, p)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(inPeriod)+len(carryOver)+len(settled))
	seen := make(map[int64]bool)
	collect := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, inv := range inPeriod {
		collect(inv.ID)
	}
	for _, inv := range carryOver {
		collect(inv.ID)
	}
	for _, id := range settled {
		collect(id)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	invoices, err := s.src.FetchInvoices(ctx, InvoiceFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("fetching invoice union: %w", err)
	}
	return invoices, nil
}

// settledInvoiceIDs resolves the period's cash-basis settlement
// entries to the invoices they settle. Each settlement references a
// reconciliation; its debit- and credit-side parent moves form a pair,
// and the pair is kept only when exactly one side belongs to the
// requested journal type (that side is the invoice, the other the
// payment). Pairs matching neither side belong to the other report.
func (s *Service) settledInvoiceIDs(ctx context.Context, p Params) ([]int64, error) {
	settlements, err := s.src.FetchMoves(ctx, MoveFilter{
		CompanyID:   p.CompanyID,
		JournalCode: s.cashBasisJournal,
		Type:        model.TypeEntry,
		State:       model.StatePosted,
		DateFrom:    p.DateFrom,
		DateTo:      p.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching settlement entries: %w", err)
	}
	if len(settlements) == 0 {
		return nil, nil
	}

	recIDs := make([]int64, 0, len(settlements))
	for _, mv := range settlements {
		if mv.CashBasisRecID != 0 {
			recIDs = append(recIDs, mv.CashBasisRecID)
		}
	}
	if len(recIDs) == 0 {
		return nil, nil
	}

	recs, err := s.src.FetchReconciliations(ctx, ReconciliationFilter{IDs: recIDs})
	if err != nil {
		return nil, fmt.Errorf("fetching settlement reconciliations: %w", err)
	}

	parentIDs := make([]int64, 0, 2*len(recs))
	for _, rec := range recs {
		parentIDs = append(parentIDs, rec.DebitMoveID, rec.CreditMoveID)
	}
	parents, err := s.src.FetchMoves(ctx, MoveFilter{IDs: parentIDs})
	if err != nil {
		return nil, fmt.Errorf("fetching reconciled moves: %w", err)
	}
	byID := make(map[int64]model.Move, len(parents))
	for _, mv := range parents {
		byID[mv.ID] = mv
	}

	var invoiceIDs []int64
	for _, rec := range recs {
		debit, credit := byID[rec.DebitMoveID], byID[rec.CreditMoveID]
		debitMatch := debit.JournalType == p.JournalType
		creditMatch := credit.JournalType == p.JournalType
		switch {
		case debitMatch && !creditMatch:
			invoiceIDs = append(invoiceIDs, debit.ID)
		case creditMatch && !debitMatch:
			invoiceIDs = append(invoiceIDs, credit.ID)
		default:
			// Neither or both sides match: the pair belongs to the
			// other journal's report.
			s.log.Debug().
				Int64("reconciliation", rec.ID).
				Msg("settlement pair skipped for this journal type")
		}
	}
	return invoiceIDs, nil
}
