package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rojournal-dev/rojournal/internal/config"
	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/report"
	"github.com/rojournal-dev/rojournal/internal/schema"
	"github.com/rojournal-dev/rojournal/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T, src report.Source) *report.Service {
	t.Helper()
	reg, err := schema.NewDefault(true, zerolog.Nop())
	require.NoError(t, err)
	cfg := config.Default("Test SRL", "RO12345678")
	return report.NewService(src, reg, cfg, zerolog.Nop(), nil)
}

func fixtureMoves() []model.Move {
	return []model.Move{
		{
			ID: 1, Number: "FACT/2025/0001", Date: day(2025, 1, 10), CompanyID: 1,
			JournalType: model.JournalSale, Type: model.TypeOutInvoice,
			State: model.StatePosted, PaymentState: model.PaymentNotPaid,
			PartnerName: "Client Unu SRL", PartnerVAT: "RO11111111",
			AmountTotalSigned: dec("119"),
			Lines: []model.Line{
				{ID: 11, MoveID: 1, AccountCode: "4111", Debit: dec("119")},
				{ID: 12, MoveID: 1, AccountCode: "707", Credit: dec("100"), TaxTags: []string{"+09_1 - BAZA"}},
				{ID: 13, MoveID: 1, AccountCode: "4427", Credit: dec("19"), TaxTags: []string{"+09_1 - TVA"}},
			},
		},
		{
			ID: 2, Number: "FACT/2025/0002", Date: day(2025, 1, 15), CompanyID: 1,
			JournalType: model.JournalSale, Type: model.TypeOutInvoice,
			State: model.StatePosted, PaymentState: model.PaymentNotPaid,
			PartnerName: "Client Doi SRL", PartnerVAT: "RO22222222",
			AmountTotalSigned: dec("109"),
			Lines: []model.Line{
				{ID: 21, MoveID: 2, AccountCode: "4111", Debit: dec("109")},
				{ID: 22, MoveID: 2, AccountCode: "707", Credit: dec("100"), TaxTags: []string{"+10_1 - BAZA"}},
				{ID: 23, MoveID: 2, AccountCode: "4427", Credit: dec("9"), TaxTags: []string{"+10_1 - TVA"}},
			},
		},
	}
}

func TestRun_SaleJournal(t *testing.T) {
	src := store.NewMemory(fixtureMoves(), nil)
	svc := newService(t, src)

	payload, err := svc.Run(context.Background(), report.Params{
		CompanyID:    1,
		DateFrom:     day(2025, 1, 1),
		DateTo:       day(2025, 1, 31),
		JournalType:  model.JournalSale,
		ShowWarnings: true,
		User:         "contabil",
	})
	require.NoError(t, err)

	assert.True(t, payload.IsSale)
	assert.True(t, payload.ShowWarnings)
	assert.Equal(t, "contabil", payload.User)
	assert.Equal(t, "Test SRL", payload.Company.Name)

	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "FACT/2025/0001", payload.Rows[0].Number)
	assert.Equal(t, "FACT/2025/0002", payload.Rows[1].Number)

	assert.True(t, dec("100").Equal(payload.Totals[schema.ColBase19]))
	assert.True(t, dec("100").Equal(payload.Totals[schema.ColBase9]))
	assert.True(t, dec("19").Equal(payload.Totals[schema.ColVAT19]))
	assert.True(t, dec("9").Equal(payload.Totals[schema.ColVAT9]))
	assert.True(t, dec("200").Equal(payload.Totals[schema.ColTotalBase]))
	assert.True(t, dec("28").Equal(payload.Totals[schema.ColTotalVAT]))
	assert.True(t, dec("228").Equal(payload.Totals[schema.ColTotal]))
}

func TestRun_EmptyPeriod(t *testing.T) {
	src := store.NewMemory(fixtureMoves(), nil)
	svc := newService(t, src)

	payload, err := svc.Run(context.Background(), report.Params{
		CompanyID:   1,
		DateFrom:    day(2025, 3, 1),
		DateTo:      day(2025, 3, 31),
		JournalType: model.JournalSale,
	})
	require.NoError(t, err)
	assert.Empty(t, payload.Rows)
	assert.NotNil(t, payload.Totals)
	assert.Empty(t, payload.Totals)
}

func TestRun_WarningsAlwaysComputed(t *testing.T) {
	moves := fixtureMoves()
	moves[0].AmountTotalSigned = dec("120") // control mismatch
	src := store.NewMemory(moves, nil)
	svc := newService(t, src)

	payload, err := svc.Run(context.Background(), report.Params{
		CompanyID:   1,
		DateFrom:    day(2025, 1, 1),
		DateTo:      day(2025, 1, 31),
		JournalType: model.JournalSale,
		// ShowWarnings stays false: a display toggle, not a filter.
	})
	require.NoError(t, err)
	require.Len(t, payload.Rows, 2)
	assert.NotEmpty(t, payload.Rows[0].WarningText())
	assert.True(t, dec("100").Equal(payload.Totals[schema.ColBase19]), "warned row still totals")
}

func TestRun_CashBasisEndToEnd(t *testing.T) {
	// December cash-basis sale settled mid-January: the January report
	// carries the row with amounts moved into the due buckets and one
	// matched payment.
	invoice := model.Move{
		ID: 1, Number: "FACT/2024/0099", Date: day(2024, 12, 15), CompanyID: 1,
		JournalType: model.JournalSale, Type: model.TypeOutInvoice,
		State: model.StatePosted, PaymentState: model.PaymentPartial,
		PartnerName: "Client Trei SRL", PartnerVAT: "RO33333333",
		AmountTotalSigned: dec("119"),
		Lines: []model.Line{
			{ID: 11, MoveID: 1, AccountCode: "4111", Debit: dec("119")},
			{ID: 12, MoveID: 1, AccountCode: "707", Credit: dec("100"), TaxTags: []string{"+09_1 - BAZA"}, TaxDueLater: true},
			{ID: 13, MoveID: 1, AccountCode: "4427", Credit: dec("19"), TaxTags: []string{"+09_1 - TVA"}, TaxDueLater: true},
		},
	}
	payment := model.Move{
		ID: 9, Number: "BANK/2025/0005", Date: day(2025, 1, 18), CompanyID: 1,
		JournalCode: "BANK", JournalType: model.JournalGeneral,
		Type: model.TypeEntry, State: model.StatePosted,
	}
	settlement := model.Move{
		ID: 5, Number: "TVAI/2025/0002", Ref: "BANK/2025/0005", Date: day(2025, 1, 18),
		CompanyID: 1, JournalCode: "TVAI", JournalType: model.JournalGeneral,
		Type: model.TypeEntry, State: model.StatePosted,
		AmountTotalSigned: dec("119"), CashBasisRecID: 100,
		Lines: []model.Line{
			{ID: 51, MoveID: 5, AccountCode: "707", Credit: dec("100"), TaxTags: []string{"+09_1 - BAZA"}},
			{ID: 52, MoveID: 5, AccountCode: "4427", Credit: dec("19"), TaxTags: []string{"+09_1 - TVA"}},
		},
	}
	recs := []model.Reconciliation{
		{ID: 100, DebitLineID: 11, CreditLineID: 91, DebitMoveID: 1, CreditMoveID: 9, MaxDate: day(2025, 1, 18)},
	}

	src := store.NewMemory([]model.Move{invoice, payment, settlement}, recs)
	svc := newService(t, src)

	payload, err := svc.Run(context.Background(), report.Params{
		CompanyID:   1,
		DateFrom:    day(2025, 1, 1),
		DateTo:      day(2025, 1, 31),
		JournalType: model.JournalSale,
	})
	require.NoError(t, err)

	require.Len(t, payload.Rows, 1)
	row := payload.Rows[0]
	assert.True(t, row.CashBasis)
	assert.True(t, row.Amounts[schema.ColBaseNotDue].IsZero())
	assert.True(t, row.Amounts[schema.ColVATNotDue].IsZero())
	assert.True(t, dec("100").Equal(row.Amounts[schema.ColBase19]))
	assert.True(t, dec("19").Equal(row.Amounts[schema.ColVAT19]))
	require.Len(t, row.Payments, 1)
	assert.Equal(t, "BANK/2025/0005", row.Payments[0].Reference)
	assert.True(t, dec("100").Equal(row.Payments[0].Base))
	assert.True(t, dec("19").Equal(row.Payments[0].Tax))

	assert.True(t, dec("100").Equal(payload.Totals[schema.ColTotalBase]))
	assert.True(t, dec("19").Equal(payload.Totals[schema.ColTotalVAT]))
}

func TestRun_RejectsBadParams(t *testing.T) {
	svc := newService(t, store.NewMemory(nil, nil))

	_, err := svc.Run(context.Background(), report.Params{
		JournalType: model.JournalGeneral,
		DateFrom:    day(2025, 1, 1),
		DateTo:      day(2025, 1, 31),
	})
	assert.Error(t, err)

	_, err = svc.Run(context.Background(), report.Params{
		JournalType: model.JournalSale,
		DateFrom:    day(2025, 2, 1),
		DateTo:      day(2025, 1, 31),
	})
	assert.Error(t, err)
}
