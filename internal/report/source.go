package report

import (
	"context"
	"time"

	"github.com/rojournal-dev/rojournal/internal/model"
)

// InvoiceFilter selects posted invoice moves. Zero-valued fields are
// ignored.
type InvoiceFilter struct {
	CompanyID int64
	Types     []model.MoveType
	State     model.MoveState
	// DateFrom/DateTo bound the invoice date inclusively.
	DateFrom time.Time
	DateTo   time.Time
	// DateBefore keeps invoices dated strictly before it (carry-over
	// candidates).
	DateBefore    time.Time
	PaymentStates []model.PaymentState
	// RequireCashBasis keeps only invoices with at least one
	// tax-not-yet-due line.
	RequireCashBasis bool
	// IDs fetches an explicit identity set (the selector's union
	// query).
	IDs []int64
}

// ReconciliationFilter selects settlement links.
type ReconciliationFilter struct {
	IDs []int64
	// LineID keeps reconciliations touching the line on either side.
	LineID int64
	// MaxDateTo keeps reconciliations whose cut-off is on or before it.
	MaxDateTo time.Time
}

// MoveFilter selects posted moves (settlement entries, parent moves).
type MoveFilter struct {
	CompanyID   int64
	JournalCode string
	Type        model.MoveType
	State       model.MoveState
	DateFrom    time.Time
	DateTo      time.Time
	// ReconciliationIDs keeps settlement entries triggered by one of
	// these reconciliations.
	ReconciliationIDs []int64
	IDs               []int64
}

// Source is the read-only data provider behind the report. Invoices
// come back ordered by (date, number) ascending; the computation
// itself never re-sorts.
type Source interface {
	FetchInvoices(ctx context.Context, f InvoiceFilter) ([]model.Move, error)
	FetchReconciliations(ctx context.Context, f ReconciliationFilter) ([]model.Reconciliation, error)
	FetchMoves(ctx context.Context, f MoveFilter) ([]model.Move, error)
}
