package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation links a debit line to a credit line, typically an
// invoice's receivable/payable line against a payment line. Immutable.
type Reconciliation struct {
	ID           int64
	DebitLineID  int64
	CreditLineID int64
	DebitMoveID  int64
	CreditMoveID int64
	// MaxDate is the settlement cut-off: the later of the two
	// reconciled entries' dates.
	MaxDate time.Time
}

// Touches reports whether the reconciliation involves the given line
// on either side.
func (r Reconciliation) Touches(lineID int64) bool {
	return r.DebitLineID == lineID || r.CreditLineID == lineID
}

// Payment is a settlement matched to a report row: the slice of an
// invoice's cash-basis tax that became due through this payment.
type Payment struct {
	Reference string
	Date      time.Time
	Amount    decimal.Decimal
	Base      decimal.Decimal
	Tax       decimal.Decimal
}
