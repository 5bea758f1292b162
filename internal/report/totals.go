package report

import (
	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/schema"
)

// Totals is the report's grand-total line: every numeric column plus
// the derived totals, each rounded to 2 decimals.
type Totals map[string]decimal.Decimal

// ComputeTotals folds all rows into column totals. An empty row set
// yields an empty (non-nil) map; summation is field-wise and
// commutative, so row order never changes the result.
func ComputeTotals(reg *schema.Registry, rows []*Row) Totals {
	totals := Totals{}
	if len(rows) == 0 {
		return totals
	}

	for _, key := range reg.NumericKeys() {
		sum := decimal.Zero
		for _, row := range rows {
			sum = sum.Add(row.Amounts[key])
		}
		totals[key] = sum.Round(2)
	}

	total := decimal.Zero
	totalBase := decimal.Zero
	totalVAT := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Total)
		totalBase = totalBase.Add(row.TotalBase)
		totalVAT = totalVAT.Add(row.TotalVAT)
	}
	totals[schema.ColTotal] = total.Round(2)
	totals[schema.ColTotalBase] = totalBase.Round(2)
	totals[schema.ColTotalVAT] = totalVAT.Round(2)

	return totals
}
