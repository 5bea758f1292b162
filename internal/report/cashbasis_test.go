package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// fakeSource implements Source over plain slices, filtering just
// enough for the selector and walker paths under test.
type fakeSource struct {
	moves []model.Move
	recs  []model.Reconciliation
}

func (f *fakeSource) FetchInvoices(_ context.Context, flt InvoiceFilter) ([]model.Move, error) {
	var out []model.Move
	for _, mv := range f.moves {
		if !mv.IsInvoice() {
			continue
		}
		if len(flt.IDs) > 0 && !containsID(flt.IDs, mv.ID) {
			continue
		}
		if flt.State != "" && mv.State != flt.State {
			continue
		}
		if len(flt.Types) > 0 && !containsMoveType(flt.Types, mv.Type) {
			continue
		}
		if !flt.DateFrom.IsZero() && mv.Date.Before(flt.DateFrom) {
			continue
		}
		if !flt.DateTo.IsZero() && mv.Date.After(flt.DateTo) {
			continue
		}
		if !flt.DateBefore.IsZero() && !mv.Date.Before(flt.DateBefore) {
			continue
		}
		if len(flt.PaymentStates) > 0 && !containsPayState(flt.PaymentStates, mv.PaymentState) {
			continue
		}
		if flt.RequireCashBasis && !mv.IsCashBasis() {
			continue
		}
		out = append(out, mv)
	}
	sortByDateNumber(out)
	return out, nil
}

func (f *fakeSource) FetchReconciliations(_ context.Context, flt ReconciliationFilter) ([]model.Reconciliation, error) {
	var out []model.Reconciliation
	for _, rec := range f.recs {
		if len(flt.IDs) > 0 && !containsID(flt.IDs, rec.ID) {
			continue
		}
		if flt.LineID != 0 && !rec.Touches(flt.LineID) {
			continue
		}
		if !flt.MaxDateTo.IsZero() && rec.MaxDate.After(flt.MaxDateTo) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeSource) FetchMoves(_ context.Context, flt MoveFilter) ([]model.Move, error) {
	var out []model.Move
	for _, mv := range f.moves {
		if len(flt.IDs) > 0 && !containsID(flt.IDs, mv.ID) {
			continue
		}
		if len(flt.ReconciliationIDs) > 0 && !containsID(flt.ReconciliationIDs, mv.CashBasisRecID) {
			continue
		}
		if flt.JournalCode != "" && mv.JournalCode != flt.JournalCode {
			continue
		}
		if flt.Type != "" && mv.Type != flt.Type {
			continue
		}
		if flt.State != "" && mv.State != flt.State {
			continue
		}
		if !flt.DateFrom.IsZero() && mv.Date.Before(flt.DateFrom) {
			continue
		}
		if !flt.DateTo.IsZero() && mv.Date.After(flt.DateTo) {
			continue
		}
		out = append(out, mv)
	}
	sortByDateNumber(out)
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsMoveType(types []model.MoveType, t model.MoveType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsPayState(states []model.PaymentState, s model.PaymentState) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

func sortByDateNumber(moves []model.Move) {
	for i := 1; i < len(moves); i++ {
		for j := i; j > 0; j-- {
			a, b := moves[j-1], moves[j]
			if b.Date.Before(a.Date) || (b.Date.Equal(a.Date) && b.Number < a.Number) {
				moves[j-1], moves[j] = b, a
			} else {
				break
			}
		}
	}
}

// cashBasisInvoice is a December sale under tax-due-on-payment, still
// unpaid at year end: 100 base + 19 VAT not yet due.
func cashBasisInvoice() model.Move {
	inv := saleInvoice()
	inv.Date = date(2024, 12, 15)
	inv.PaymentState = model.PaymentNotPaid
	inv.Lines[1].TaxDueLater = true
	inv.Lines[2].TaxDueLater = true
	return inv
}

// settlementMove books the cash-basis transfer triggered by a payment:
// the paid slice of base and VAT becomes due.
func settlementMove(id, recID int64, day int) model.Move {
	return model.Move{
		ID:                id,
		Number:            "TVAI/2025/000" + string(rune('0'+id)),
		Ref:               "PLATA/000" + string(rune('0'+id)),
		Date:              date(2025, 1, day),
		CompanyID:         1,
		JournalCode:       "TVAI",
		JournalType:       model.JournalGeneral,
		Type:              model.TypeEntry,
		State:             model.StatePosted,
		AmountTotalSigned: dec("119"),
		CashBasisRecID:    recID,
		Lines: []model.Line{
			{ID: id*10 + 1, MoveID: id, AccountCode: "707", Credit: dec("100"), TaxTags: []string{"+09_1 - BAZA"}},
			{ID: id*10 + 2, MoveID: id, AccountCode: "4427", Credit: dec("19"), TaxTags: []string{"+09_1 - TVA"}},
		},
	}
}

func janParams() Params {
	return Params{
		CompanyID:   1,
		DateFrom:    date(2025, 1, 1),
		DateTo:      date(2025, 1, 31),
		JournalType: model.JournalSale,
	}
}

func TestWalk_NoSettlements(t *testing.T) {
	src := &fakeSource{}
	s := newTestService(t, src)

	row := s.classify(cashBasisInvoice(), model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, dec("100").Equal(row.Amounts[schema.ColBaseNotDue]))
	assert.True(t, dec("19").Equal(row.Amounts[schema.ColVATNotDue]))
	assert.True(t, row.Amounts[schema.ColBase19].IsZero())
	assert.True(t, row.Amounts[schema.ColBaseDue].IsZero())
	assert.Empty(t, row.Payments)
}

func TestWalk_InPeriodSettlement(t *testing.T) {
	inv := cashBasisInvoice()
	src := &fakeSource{
		moves: []model.Move{inv, settlementMove(5, 100, 20)},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2025, 1, 20)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, row.Amounts[schema.ColBaseNotDue].IsZero(), "not-yet-due base drained")
	assert.True(t, row.Amounts[schema.ColVATNotDue].IsZero(), "not-yet-due vat drained")
	assert.True(t, dec("100").Equal(row.Amounts[schema.ColBase19]))
	assert.True(t, dec("19").Equal(row.Amounts[schema.ColVAT19]))
	assert.True(t, dec("100").Equal(row.Amounts[schema.ColBaseDue]))
	assert.True(t, dec("19").Equal(row.Amounts[schema.ColVATDue]))
	assert.True(t, dec("100").Equal(row.TotalBase))
	assert.True(t, dec("19").Equal(row.TotalVAT))

	require.Len(t, row.Payments, 1)
	p := row.Payments[0]
	assert.Equal(t, "PLATA/0005", p.Reference)
	assert.Equal(t, date(2025, 1, 20), p.Date)
	assert.True(t, dec("100").Equal(p.Base))
	assert.True(t, dec("19").Equal(p.Tax))
}

func TestWalk_PrePeriodSettlementOnlyDrains(t *testing.T) {
	// The December payment was reported as due in December's run; in
	// January it must only leave the not-yet-due buckets.
	inv := cashBasisInvoice()
	settled := settlementMove(6, 100, 1)
	settled.Date = date(2024, 12, 28)
	src := &fakeSource{
		moves: []model.Move{inv, settled},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2024, 12, 28)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, row.Amounts[schema.ColBaseNotDue].IsZero())
	assert.True(t, row.Amounts[schema.ColVATNotDue].IsZero())
	assert.True(t, row.Amounts[schema.ColBase19].IsZero(), "no due amount this period")
	assert.True(t, row.Amounts[schema.ColBaseDue].IsZero())
	assert.Empty(t, row.Payments)
}

func TestWalk_SettlementAfterCutoffIgnored(t *testing.T) {
	inv := cashBasisInvoice()
	late := settlementMove(7, 100, 1)
	late.Date = date(2025, 2, 5)
	src := &fakeSource{
		moves: []model.Move{inv, late},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2025, 1, 25)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, dec("100").Equal(row.Amounts[schema.ColBaseNotDue]))
	assert.Empty(t, row.Payments)
}

func TestWalk_PartialSettlement(t *testing.T) {
	inv := cashBasisInvoice()
	partial := settlementMove(8, 100, 15)
	partial.AmountTotalSigned = dec("59.50")
	partial.Lines[0].Credit = dec("50")
	partial.Lines[1].Credit = dec("9.50")
	src := &fakeSource{
		moves: []model.Move{inv, partial},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2025, 1, 15)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, dec("50").Equal(row.Amounts[schema.ColBaseNotDue]))
	assert.True(t, dec("9.50").Equal(row.Amounts[schema.ColVATNotDue]))
	assert.True(t, dec("50").Equal(row.Amounts[schema.ColBase19]))
	assert.True(t, dec("9.50").Equal(row.Amounts[schema.ColVAT19]))
	require.Len(t, row.Payments, 1)
	assert.True(t, dec("50").Equal(row.Payments[0].Base))
	assert.True(t, dec("9.50").Equal(row.Payments[0].Tax))
}

func TestWalk_NegativeBucketFlooredAndWarned(t *testing.T) {
	// The settlement's tags move more than the invoice ever put into
	// the not-yet-due buckets; the bucket floors at zero and warns.
	inv := cashBasisInvoice()
	over := settlementMove(9, 100, 18)
	over.Lines[0].Credit = dec("150")
	src := &fakeSource{
		moves: []model.Move{inv, over},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2025, 1, 18)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	assert.True(t, row.Amounts[schema.ColBaseNotDue].IsZero())
	var found bool
	for _, w := range row.Warnings {
		if w.Code == CodeNegativeBucket {
			found = true
		}
	}
	assert.True(t, found, "expected a negative-bucket warning")
}

func TestWalk_TotalsHoldAfterAdjustment(t *testing.T) {
	inv := cashBasisInvoice()
	src := &fakeSource{
		moves: []model.Move{inv, settlementMove(5, 100, 20)},
		recs: []model.Reconciliation{
			{ID: 100, DebitLineID: 11, CreditLineID: 900, DebitMoveID: 1, CreditMoveID: 9, MaxDate: date(2025, 1, 20)},
		},
	}
	s := newTestService(t, src)

	row := s.classify(inv, model.JournalSale)
	require.NoError(t, s.walkSettlements(context.Background(), row, janParams()))

	base := dec("0")
	for _, key := range s.reg.BaseGroup() {
		base = base.Add(row.Amounts[key])
	}
	vat := dec("0")
	for _, key := range s.reg.VATGroup() {
		vat = vat.Add(row.Amounts[key])
	}
	assert.True(t, base.Equal(row.TotalBase))
	assert.True(t, vat.Equal(row.TotalVAT))
}
