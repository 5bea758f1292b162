package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// walkSettlements adjusts a cash-basis row by its settlement history
// up to the report's cut-off date. Settlements dated before the period
// were already reported as due in an earlier run, so their amounts
// only leave the not-yet-due buckets; settlements inside the period
// move amounts into the due buckets and are recorded as payments.
// An invoice with no settlements stays entirely not-yet-due.
func (s *Service) walkSettlements(ctx context.Context, row *Row, p Params) error {
	recs, err := s.src.FetchReconciliations(ctx, ReconciliationFilter{
		LineID:    row.controlLineID,
		MaxDateTo: p.DateTo,
	})
	if err != nil {
		return fmt.Errorf("fetching reconciliations: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}

	recIDs := make([]int64, len(recs))
	for i, rec := range recs {
		recIDs[i] = rec.ID
	}

	settlements, err := s.src.FetchMoves(ctx, MoveFilter{
		CompanyID:         p.CompanyID,
		State:             model.StatePosted,
		ReconciliationIDs: recIDs,
	})
	if err != nil {
		return fmt.Errorf("fetching settlement moves: %w", err)
	}

	sign := p.JournalType.Sign()
	for _, mv := range settlements {
		if mv.Date.After(p.DateTo) {
			continue
		}
		if mv.Date.Before(p.DateFrom) {
			s.reverseNotYetDue(row, mv, sign)
			continue
		}
		s.applySettlement(row, mv, sign)
	}

	row.recomputeTotals(s.reg)
	return nil
}

// reverseNotYetDue removes a pre-period settlement's amounts from the
// not-yet-due buckets. The amounts became due in an earlier period's
// report and must not linger here.
func (s *Service) reverseNotYetDue(row *Row, mv model.Move, sign decimal.Decimal) {
	for _, line := range mv.Lines {
		if line.IsDisplayOnly() || len(line.TaxTags) == 0 {
			continue
		}
		net := signedNet(line, sign)
		for _, tag := range line.TaxTags {
			for _, key := range s.reg.Resolve(tag) {
				switch {
				case s.reg.IsBase(key):
					row.drain(schema.ColBaseNotDue, net)
				case s.reg.IsVAT(key):
					row.drain(schema.ColVATNotDue, net)
				}
			}
		}
	}
}

// applySettlement books an in-period settlement: tagged amounts move
// out of the not-yet-due buckets into their resolved rate columns and
// the exigibil pair, and the payment is appended to the row.
func (s *Service) applySettlement(row *Row, mv model.Move, sign decimal.Decimal) {
	base := decimal.Zero
	tax := decimal.Zero

	for _, line := range mv.Lines {
		if line.IsDisplayOnly() || len(line.TaxTags) == 0 {
			continue
		}
		net := signedNet(line, sign)
		for _, tag := range line.TaxTags {
			for _, key := range s.reg.Resolve(tag) {
				row.add(key, net)
				switch {
				case s.reg.IsBase(key):
					row.add(schema.ColBaseDue, net)
					row.drain(schema.ColBaseNotDue, net)
					base = base.Add(net).Round(2)
				case s.reg.IsVAT(key):
					row.add(schema.ColVATDue, net)
					row.drain(schema.ColVATNotDue, net)
					tax = tax.Add(net).Round(2)
				}
			}
		}
	}

	reference := mv.Ref
	if reference == "" {
		reference = mv.Number
	}
	row.Payments = append(row.Payments, model.Payment{
		Reference: reference,
		Date:      mv.Date,
		Amount:    mv.AmountTotalSigned.Abs(),
		Base:      base,
		Tax:       tax,
	})
}
