package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/report"
)

// Postgres implements report.Source over the accounting snapshot
// tables `moves`, `move_lines` and `reconciliations`.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a Postgres source.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

type moveRow struct {
	ID                int64     `db:"id"`
	Number            string    `db:"number"`
	Ref               string    `db:"ref"`
	Date              time.Time `db:"date"`
	CompanyID         int64     `db:"company_id"`
	JournalCode       string    `db:"journal_code"`
	JournalType       string    `db:"journal_type"`
	Type              string    `db:"type"`
	State             string    `db:"state"`
	PaymentState      string    `db:"payment_state"`
	PartnerName       string    `db:"partner_name"`
	PartnerVAT        string    `db:"partner_vat"`
	AmountTotalSigned string    `db:"amount_total_signed"`
	CashBasisRecID    int64     `db:"cash_basis_rec_id"`
}

type lineRow struct {
	ID          int64          `db:"id"`
	MoveID      int64          `db:"move_id"`
	AccountCode string         `db:"account_code"`
	Name        string         `db:"name"`
	Debit       string         `db:"debit"`
	Credit      string         `db:"credit"`
	TaxTags     pq.StringArray `db:"tax_tags"`
	Display     string         `db:"display"`
	TaxDueLater bool           `db:"tax_due_later"`
}

type recRow struct {
	ID           int64     `db:"id"`
	DebitLineID  int64     `db:"debit_line_id"`
	CreditLineID int64     `db:"credit_line_id"`
	DebitMoveID  int64     `db:"debit_move_id"`
	CreditMoveID int64     `db:"credit_move_id"`
	MaxDate      time.Time `db:"max_date"`
}

const moveColumns = `id, number, ref, date, company_id, journal_code, journal_type,
	type, state, payment_state, partner_name, partner_vat,
	amount_total_signed::text AS amount_total_signed, cash_basis_rec_id`

// FetchInvoices selects invoice moves with their lines, ordered by
// (date, number).
func (p *Postgres) FetchInvoices(ctx context.Context, f report.InvoiceFilter) ([]model.Move, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if len(f.IDs) > 0 {
		add("id = ANY($%d)", pq.Array(f.IDs))
	}
	if f.CompanyID != 0 {
		add("company_id = $%d", f.CompanyID)
	}
	if f.State != "" {
		add("state = $%d", string(f.State))
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		add("type = ANY($%d)", pq.Array(types))
	}
	if !f.DateFrom.IsZero() {
		add("date >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("date <= $%d", f.DateTo)
	}
	if !f.DateBefore.IsZero() {
		add("date < $%d", f.DateBefore)
	}
	if len(f.PaymentStates) > 0 {
		states := make([]string, len(f.PaymentStates))
		for i, st := range f.PaymentStates {
			states[i] = string(st)
		}
		add("payment_state = ANY($%d)", pq.Array(states))
	}
	if f.RequireCashBasis {
		where = append(where, "EXISTS (SELECT 1 FROM move_lines ml WHERE ml.move_id = moves.id AND ml.tax_due_later)")
	}

	query := "SELECT " + moveColumns + " FROM moves"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, number"

	var rows []moveRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying moves: %w", err)
	}

	moves, err := toMoves(rows)
	if err != nil {
		return nil, err
	}
	if err := p.attachLines(ctx, moves); err != nil {
		return nil, err
	}
	return moves, nil
}

// FetchReconciliations selects settlement links.
func (p *Postgres) FetchReconciliations(ctx context.Context, f report.ReconciliationFilter) ([]model.Reconciliation, error) {
	var where []string
	var args []any

	if len(f.IDs) > 0 {
		args = append(args, pq.Array(f.IDs))
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if f.LineID != 0 {
		args = append(args, f.LineID)
		where = append(where, fmt.Sprintf("(debit_line_id = $%d OR credit_line_id = $%d)", len(args), len(args)))
	}
	if !f.MaxDateTo.IsZero() {
		args = append(args, f.MaxDateTo)
		where = append(where, fmt.Sprintf("max_date <= $%d", len(args)))
	}

	query := "SELECT id, debit_line_id, credit_line_id, debit_move_id, credit_move_id, max_date FROM reconciliations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var rows []recRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying reconciliations: %w", err)
	}

	recs := make([]model.Reconciliation, len(rows))
	for i, r := range rows {
		recs[i] = model.Reconciliation(r)
	}
	return recs, nil
}

// FetchMoves selects moves (settlement entries, reconciled parents)
// with their lines.
func (p *Postgres) FetchMoves(ctx context.Context, f report.MoveFilter) ([]model.Move, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if len(f.IDs) > 0 {
		add("id = ANY($%d)", pq.Array(f.IDs))
	}
	if len(f.ReconciliationIDs) > 0 {
		add("cash_basis_rec_id = ANY($%d)", pq.Array(f.ReconciliationIDs))
	}
	if f.CompanyID != 0 {
		add("company_id = $%d", f.CompanyID)
	}
	if f.JournalCode != "" {
		add("journal_code = $%d", f.JournalCode)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.State != "" {
		add("state = $%d", string(f.State))
	}
	if !f.DateFrom.IsZero() {
		add("date >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("date <= $%d", f.DateTo)
	}

	query := "SELECT " + moveColumns + " FROM moves"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, number"

	var rows []moveRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying moves: %w", err)
	}

	moves, err := toMoves(rows)
	if err != nil {
		return nil, err
	}
	if err := p.attachLines(ctx, moves); err != nil {
		return nil, err
	}
	return moves, nil
}

func (p *Postgres) attachLines(ctx context.Context, moves []model.Move) error {
	if len(moves) == 0 {
		return nil
	}

	ids := make([]int64, len(moves))
	index := make(map[int64]int, len(moves))
	for i, mv := range moves {
		ids[i] = mv.ID
		index[mv.ID] = i
	}

	query := `SELECT id, move_id, account_code, name,
		debit::text AS debit, credit::text AS credit,
		tax_tags, display, tax_due_later
		FROM move_lines WHERE move_id = ANY($1) ORDER BY move_id, id`

	var rows []lineRow
	if err := p.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("querying move lines: %w", err)
	}

	for _, r := range rows {
		debit, err := decimal.NewFromString(r.Debit)
		if err != nil {
			return fmt.Errorf("line %d: parsing debit %q: %w", r.ID, r.Debit, err)
		}
		credit, err := decimal.NewFromString(r.Credit)
		if err != nil {
			return fmt.Errorf("line %d: parsing credit %q: %w", r.ID, r.Credit, err)
		}
		i := index[r.MoveID]
		moves[i].Lines = append(moves[i].Lines, model.Line{
			ID:          r.ID,
			MoveID:      r.MoveID,
			AccountCode: r.AccountCode,
			Name:        r.Name,
			Debit:       debit,
			Credit:      credit,
			TaxTags:     []string(r.TaxTags),
			Display:     model.DisplayKind(r.Display),
			TaxDueLater: r.TaxDueLater,
		})
	}
	return nil
}

func toMoves(rows []moveRow) ([]model.Move, error) {
	moves := make([]model.Move, len(rows))
	for i, r := range rows {
		total, err := decimal.NewFromString(r.AmountTotalSigned)
		if err != nil {
			return nil, fmt.Errorf("move %d: parsing total %q: %w", r.ID, r.AmountTotalSigned, err)
		}
		moves[i] = model.Move{
			ID:                r.ID,
			Number:            r.Number,
			Ref:               r.Ref,
			Date:              r.Date,
			CompanyID:         r.CompanyID,
			JournalCode:       r.JournalCode,
			JournalType:       model.JournalType(r.JournalType),
			Type:              model.MoveType(r.Type),
			State:             model.MoveState(r.State),
			PaymentState:      model.PaymentState(r.PaymentState),
			PartnerName:       r.PartnerName,
			PartnerVAT:        r.PartnerVAT,
			AmountTotalSigned: total,
			CashBasisRecID:    r.CashBasisRecID,
		}
	}
	return moves, nil
}
