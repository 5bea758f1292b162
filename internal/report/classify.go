package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/auditlog"
	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// classify builds one report row from an invoice. Data-quality
// problems never abort the row: they accumulate as diagnostics.
// Classification is pure per invoice: the same invoice and registry
// always yield an identical row.
func (s *Service) classify(inv model.Move, journalType model.JournalType) *Row {
	sign := journalType.Sign()

	row := NewRow(s.reg)
	row.Number = inv.Number
	row.Date = inv.Date
	row.Partner = inv.PartnerName
	row.VAT = inv.PartnerVAT
	row.Total = sign.Mul(inv.AmountTotalSigned).Round(2)

	for _, line := range inv.Lines {
		if line.IsDisplayOnly() {
			continue
		}

		if s.isControlAccount(line.AccountCode) {
			if row.controlLineID == 0 {
				row.controlLineID = line.ID
			}
			// Control line nets debit-credit: the receivable/payable
			// must mirror the invoice total.
			controlNet := sign.Mul(line.Debit.Sub(line.Credit)).Round(2)
			if !controlNet.Equal(row.Total) {
				row.warnf(CodeControlMismatch,
					"the value of invoice is %s but accounting account %s has a value of %s",
					row.Total.StringFixed(2), line.AccountCode, controlNet.StringFixed(2))
			}
			continue
		}

		net := signedNet(line, sign)
		if len(line.TaxTags) == 0 {
			row.add(schema.ColBase0, net)
			continue
		}
		s.applyTags(row, inv, line, net)

		if line.TaxDueLater {
			row.CashBasis = true
		}
	}

	row.recomputeTotals(s.reg)
	return row
}

// applyTags routes a tagged line's net amount into the schema columns.
// A tag resolving to several columns fans the amount out to each;
// cash-basis lines land in the neexigibil buckets instead of the rate
// buckets. A line whose tags resolve to nothing gets a warning naming
// the line and its amounts.
func (s *Service) applyTags(row *Row, inv model.Move, line model.Line, net decimal.Decimal) {
	resolvedAny := false
	for _, tag := range line.TaxTags {
		keys := s.reg.Resolve(tag)
		if len(keys) == 0 {
			continue
		}
		resolvedAny = true
		if len(keys) > 1 {
			s.log.Warn().
				Str("invoice", inv.Number).
				Str("tag", tag).
				Strs("columns", keys).
				Msg("tag fans out to multiple columns")
			for _, key := range keys {
				s.audit.Record(auditlog.Entry{
					Component: "classifier",
					Event:     auditlog.EventFanOut,
					Detail:    "tag " + tag,
					Invoice:   inv.Number,
					Column:    key,
				})
			}
		}
		for _, key := range keys {
			row.add(s.bucketFor(line, key), net)
		}
	}
	if !resolvedAny {
		row.warnf(CodeUnknownColumn,
			"unknown report column for line %s debit=%s credit=%s tags=%s",
			line.Name, line.Debit.StringFixed(2), line.Credit.StringFixed(2),
			strings.Join(line.TaxTags, ","))
	}
}

// bucketFor redirects cash-basis line amounts into the not-yet-due
// buckets; everything else keeps its resolved column.
func (s *Service) bucketFor(line model.Line, key string) string {
	if !line.TaxDueLater {
		return key
	}
	switch {
	case s.reg.IsBase(key):
		return schema.ColBaseNotDue
	case s.reg.IsVAT(key):
		return schema.ColVATNotDue
	}
	return key
}

func (s *Service) isControlAccount(code string) bool {
	for _, prefix := range s.controlPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}
