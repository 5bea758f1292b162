// Package schema defines the fixed column table of the sale/purchase
// journal and the tag index built from it.
package schema

// Kind classifies a column's value type.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindList    Kind = "list"
)

// Column keys of the journal report. The layout follows the Romanian
// sale/purchase journal: base and VAT amounts split by rate, the
// neexigibil/exigibil pair for cash-basis VAT, deduction and exemption
// buckets, and the non-numeric payments/warnings columns.
const (
	ColBaseNotDue = "base_neex"
	ColBaseDue    = "base_exig"
	ColBaseDed1   = "base_ded1"
	ColBaseDed2   = "base_ded2"
	ColBase19     = "base_19"
	ColBase9      = "base_9"
	ColBase5      = "base_5"
	ColBase0      = "base_0"

	ColVATNotDue = "tva_neex"
	ColVATDue    = "tva_exig"
	ColVAT19     = "tva_19"
	ColVAT9      = "tva_9"
	ColVAT5      = "tva_5"
	ColVATGoods  = "tva_bun"
	ColVATServ   = "tva_serv"

	ColBaseCollect = "base_col"
	ColVATCollect  = "tva_col"

	ColReverseCharge = "invers"
	ColNonTaxable    = "neimp"
	ColOther         = "others"
	ColExempt1       = "scutit1"
	ColExempt2       = "scutit2"

	ColPayments = "payments"
	ColWarnings = "warnings"
)

// Derived column keys (sums over the base/VAT groups).
const (
	ColTotal     = "total"
	ColTotalBase = "total_base"
	ColTotalVAT  = "total_vat"
)

// Column is one descriptor of the hand-maintained column table.
type Column struct {
	Key  string
	Kind Kind
	// Tags are the statutory tax-tag labels routed to this column.
	Tags []string
}

// DefaultColumns returns the column table used by the report. Tag
// labels must match the statement tag names exactly; the table is
// maintained by hand as the tax authority revises the statement.
func DefaultColumns() []Column {
	return []Column{
		{Key: ColBaseNotDue, Kind: KindNumeric},
		{Key: ColBaseDue, Kind: KindNumeric},
		{Key: ColBaseDed1, Kind: KindNumeric},
		{Key: ColBaseDed2, Kind: KindNumeric},
		{Key: ColBase19, Kind: KindNumeric, Tags: []string{"-09_1 - BAZA", "+09_1 - BAZA"}},
		{Key: ColBase9, Kind: KindNumeric, Tags: []string{"-10_1 - BAZA", "+10_1 - BAZA"}},
		{Key: ColBase5, Kind: KindNumeric, Tags: []string{"-11_1 - BAZA", "+11_1 - BAZA"}},
		{Key: ColBase0, Kind: KindNumeric, Tags: []string{"-14 - BAZA", "+14 - BAZA"}},

		{Key: ColVATNotDue, Kind: KindNumeric},
		{Key: ColVATDue, Kind: KindNumeric},
		{Key: ColVAT19, Kind: KindNumeric, Tags: []string{"-09_1 - TVA", "+09_1 - TVA"}},
		{Key: ColVAT9, Kind: KindNumeric, Tags: []string{"-10_1 - TVA", "+10_1 - TVA"}},
		{Key: ColVAT5, Kind: KindNumeric, Tags: []string{"-11_1 - TVA", "+11_1 - TVA"}},
		{Key: ColVATGoods, Kind: KindNumeric},
		{Key: ColVATServ, Kind: KindNumeric},

		{Key: ColBaseCollect, Kind: KindNumeric},
		{Key: ColVATCollect, Kind: KindNumeric},

		{Key: ColReverseCharge, Kind: KindNumeric},
		{Key: ColNonTaxable, Kind: KindNumeric},
		{Key: ColOther, Kind: KindNumeric},
		{Key: ColExempt1, Kind: KindNumeric},
		{Key: ColExempt2, Kind: KindNumeric},

		{Key: ColPayments, Kind: KindList},
		{Key: ColWarnings, Kind: KindText},
	}
}

// DefaultBaseGroup lists the columns summed into total_base.
func DefaultBaseGroup() []string {
	return []string{ColBase19, ColBase9, ColBase5, ColBase0}
}

// DefaultVATGroup lists the columns summed into total_vat.
func DefaultVATGroup() []string {
	return []string{ColVAT19, ColVAT9, ColVAT5, ColVATGoods, ColVATServ}
}
