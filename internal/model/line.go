package model

import "github.com/shopspring/decimal"

// DisplayKind distinguishes monetary lines from purely visual ones.
type DisplayKind string

const (
	DisplayNormal  DisplayKind = ""
	DisplaySection DisplayKind = "line_section"
	DisplayNote    DisplayKind = "line_note"
)

// Line is a single row of a Move (one side of a double-entry).
type Line struct {
	ID          int64
	MoveID      int64
	AccountCode string
	Name        string
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	TaxTags     []string
	Display     DisplayKind
	// TaxDueLater marks cash-basis VAT: the tax becomes due when the
	// invoice is paid, not when it is issued.
	TaxDueLater bool
}

// IsDisplayOnly reports whether the line is a section header or note
// carrying no monetary meaning.
func (l Line) IsDisplayOnly() bool {
	return l.Display == DisplaySection || l.Display == DisplayNote
}

// Net returns credit minus debit, the line's contribution before the
// journal sign is applied.
func (l Line) Net() decimal.Decimal {
	return l.Credit.Sub(l.Debit)
}
