package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/period"
	"github.com/rojournal-dev/rojournal/internal/report"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// renderTable writes the journal as an aligned text table, one invoice
// per row, a totals line at the bottom.
func renderTable(w io.Writer, reg *schema.Registry, p *report.Payload) error {
	title := "JURNAL DE CUMPARARI"
	if p.IsSale {
		title = "JURNAL DE VANZARI"
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s (CUI %s)\n", p.Company.Name, p.Company.VAT)
	fmt.Fprintf(w, "Period %s .. %s, printed %s",
		p.DateFrom.Format(period.DateFormat),
		p.DateTo.Format(period.DateFormat),
		p.PrintedAt.Format("2006-01-02 15:04"))
	if p.User != "" {
		fmt.Fprintf(w, " by %s", p.User)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(renderHeader(reg, p.ShowWarnings), "\t"))
	for i, row := range p.Rows {
		fmt.Fprintln(tw, strings.Join(renderRow(reg, p, i, row), "\t"))
	}
	fmt.Fprintln(tw, strings.Join(renderTotals(reg, p), "\t"))
	return tw.Flush()
}

// renderCSV writes the same rows in CSV form, without the title block.
func renderCSV(w io.Writer, reg *schema.Registry, p *report.Payload) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(renderHeader(reg, p.ShowWarnings)); err != nil {
		return err
	}
	for i, row := range p.Rows {
		if err := cw.Write(renderRow(reg, p, i, row)); err != nil {
			return err
		}
	}
	if err := cw.Write(renderTotals(reg, p)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func renderHeader(reg *schema.Registry, showWarnings bool) []string {
	fields := []string{"nr", "number", "date", "partner", "vat", "total"}
	fields = append(fields, reg.NumericKeys()...)
	fields = append(fields, schema.ColTotalBase, schema.ColTotalVAT, schema.ColPayments)
	if showWarnings {
		fields = append(fields, schema.ColWarnings)
	}
	return fields
}

func renderRow(reg *schema.Registry, p *report.Payload, i int, row *report.Row) []string {
	fields := []string{
		fmt.Sprintf("%d", i+1),
		row.Number,
		row.Date.Format(period.DateFormat),
		row.Partner,
		row.VAT,
		row.Total.StringFixed(2),
	}
	for _, key := range reg.NumericKeys() {
		fields = append(fields, row.Amounts[key].StringFixed(2))
	}
	fields = append(fields,
		row.TotalBase.StringFixed(2),
		row.TotalVAT.StringFixed(2),
		renderPayments(row.Payments))
	if p.ShowWarnings {
		fields = append(fields, row.WarningText())
	}
	return fields
}

func renderTotals(reg *schema.Registry, p *report.Payload) []string {
	fields := []string{"", "TOTAL", "", "", "", p.Totals[schema.ColTotal].StringFixed(2)}
	for _, key := range reg.NumericKeys() {
		fields = append(fields, p.Totals[key].StringFixed(2))
	}
	fields = append(fields,
		p.Totals[schema.ColTotalBase].StringFixed(2),
		p.Totals[schema.ColTotalVAT].StringFixed(2),
		"")
	if p.ShowWarnings {
		fields = append(fields, "")
	}
	return fields
}

func renderPayments(payments []model.Payment) string {
	if len(payments) == 0 {
		return ""
	}
	parts := make([]string, len(payments))
	for i, pay := range payments {
		parts[i] = fmt.Sprintf("%s %s: %s (base %s, vat %s)",
			pay.Reference,
			pay.Date.Format(period.DateFormat),
			pay.Amount.StringFixed(2),
			pay.Base.StringFixed(2),
			pay.Tax.StringFixed(2))
	}
	return strings.Join(parts, "; ")
}
