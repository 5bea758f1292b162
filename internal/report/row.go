// Package report computes the sale/purchase journal: one row per
// invoice, amounts classified into the fixed column schema, cash-basis
// invoices adjusted by their settlements up to the cut-off date.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// DiagnosticCode identifies a class of data-quality problem.
type DiagnosticCode string

const (
	// CodeUnknownColumn marks a line whose tags resolve to no column.
	CodeUnknownColumn DiagnosticCode = "unknown-column"
	// CodeControlMismatch marks a control-account line whose net
	// disagrees with the invoice total.
	CodeControlMismatch DiagnosticCode = "control-mismatch"
	// CodeNegativeBucket marks a settlement adjustment that would have
	// driven a not-yet-due bucket below zero.
	CodeNegativeBucket DiagnosticCode = "negative-bucket"
)

// Diagnostic is one accumulated data-quality warning on a row.
// Problems are recorded, never thrown: a malformed invoice must not
// block the rest of the report.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// Row is one line of the journal report. For cash-basis invoices the
// row already nets settlement effects up to the report's cut-off.
type Row struct {
	Number  string
	Date    time.Time
	Partner string
	VAT     string
	Total   decimal.Decimal

	// Amounts holds every numeric column bucket, keyed by schema
	// column key. Owned exclusively by this row.
	Amounts map[string]decimal.Decimal

	TotalBase decimal.Decimal
	TotalVAT  decimal.Decimal

	Payments  []model.Payment
	Warnings  []Diagnostic
	CashBasis bool

	// controlLineID is the receivable/payable line located during
	// classification, the anchor for the settlement walk.
	controlLineID int64
}

// NewRow returns a blank row from the schema's column kinds: numeric
// columns zeroed, text empty, lists empty. Rows never share nested
// state.
func NewRow(reg *schema.Registry) *Row {
	return &Row{Amounts: reg.BlankAmounts()}
}

// add accumulates an amount into a bucket, rounding at 2 decimals on
// each update so repeated additions cannot drift.
func (r *Row) add(key string, amount decimal.Decimal) {
	r.Amounts[key] = r.Amounts[key].Add(amount).Round(2)
}

// drain subtracts from a bucket, flooring at zero. A floor hit means
// the settlement's tags no longer match the invoice's and is surfaced
// as a warning.
func (r *Row) drain(key string, amount decimal.Decimal) {
	next := r.Amounts[key].Sub(amount).Round(2)
	if next.Sign() < 0 {
		r.warnf(CodeNegativeBucket,
			"column %s would drop to %s after settlement adjustment; floored at zero",
			key, next.StringFixed(2))
		next = decimal.Zero
	}
	r.Amounts[key] = next
}

func (r *Row) warnf(code DiagnosticCode, format string, args ...any) {
	r.Warnings = append(r.Warnings, Diagnostic{Code: code, Message: fmt.Sprintf(format, args...)})
}

// recomputeTotals rebuilds total_base and total_vat from the declared
// group members. Called after every mutation pass.
func (r *Row) recomputeTotals(reg *schema.Registry) {
	r.TotalBase = sumColumns(r.Amounts, reg.BaseGroup())
	r.TotalVAT = sumColumns(r.Amounts, reg.VATGroup())
}

func sumColumns(amounts map[string]decimal.Decimal, keys []string) decimal.Decimal {
	total := decimal.Zero
	for _, key := range keys {
		total = total.Add(amounts[key])
	}
	return total.Round(2)
}

// WarningText joins the row's diagnostics for presentation.
func (r *Row) WarningText() string {
	if len(r.Warnings) == 0 {
		return ""
	}
	parts := make([]string, len(r.Warnings))
	for i, d := range r.Warnings {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}
