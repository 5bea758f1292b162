package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveType identifies the fiscal nature of a posted entry.
type MoveType string

const (
	TypeOutInvoice MoveType = "out_invoice"
	TypeOutRefund  MoveType = "out_refund"
	TypeOutReceipt MoveType = "out_receipt"
	TypeInInvoice  MoveType = "in_invoice"
	TypeInRefund   MoveType = "in_refund"
	TypeInReceipt  MoveType = "in_receipt"
	TypeEntry      MoveType = "entry"
)

// MoveState is the lifecycle state of a Move.
type MoveState string

const (
	StateDraft  MoveState = "draft"
	StatePosted MoveState = "posted"
)

// PaymentState tracks how much of an invoice has been settled.
type PaymentState string

const (
	PaymentPaid    PaymentState = "paid"
	PaymentPartial PaymentState = "partial"
	PaymentNotPaid PaymentState = "not_paid"
)

// JournalType selects which fiscal journal a report covers.
type JournalType string

const (
	JournalSale     JournalType = "sale"
	JournalPurchase JournalType = "purchase"
	JournalGeneral  JournalType = "general"
)

// InvoiceTypes returns the move types belonging to this journal.
func (j JournalType) InvoiceTypes() []MoveType {
	switch j {
	case JournalSale:
		return []MoveType{TypeOutInvoice, TypeOutRefund, TypeOutReceipt}
	case JournalPurchase:
		return []MoveType{TypeInInvoice, TypeInRefund, TypeInReceipt}
	}
	return nil
}

// Sign returns +1 for sale journals and -1 for purchase journals,
// matching the report's column sign convention.
func (j JournalType) Sign() decimal.Decimal {
	if j == JournalSale {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// Move is a posted accounting entry: a customer/supplier invoice, a
// refund, or a cash-basis settlement entry. Report runs treat it as a
// read-only snapshot.
type Move struct {
	ID                int64
	Number            string
	Ref               string
	Date              time.Time
	CompanyID         int64
	JournalCode       string
	JournalType       JournalType
	Type              MoveType
	State             MoveState
	PaymentState      PaymentState
	PartnerName       string
	PartnerVAT        string
	AmountTotalSigned decimal.Decimal
	// CashBasisRecID links a settlement entry to the reconciliation
	// that triggered it. Zero for ordinary invoices.
	CashBasisRecID int64
	Lines          []Line
}

// IsCashBasis reports whether any line carries tax that is not yet due
// ("tax due on payment").
func (m Move) IsCashBasis() bool {
	for _, l := range m.Lines {
		if l.TaxDueLater {
			return true
		}
	}
	return false
}

// IsInvoice reports whether the move is an invoice-like document
// rather than a plain entry.
func (m Move) IsInvoice() bool {
	return m.Type != TypeEntry
}
