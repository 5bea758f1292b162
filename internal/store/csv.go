package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/model"
)

// CSV snapshot layout: a data directory holding moves.csv, lines.csv
// and reconciliations.csv exported from the accounting system.

// MovesHeader is the CSV header for moves.csv.
const MovesHeader = "id,number,ref,date,company_id,journal_code,journal_type,type,state,payment_state,partner,partner_vat,amount_total_signed,cash_basis_rec_id"

// LinesHeader is the CSV header for lines.csv.
const LinesHeader = "id,move_id,account_code,name,debit,credit,tags,display,tax_due_later"

// ReconciliationsHeader is the CSV header for reconciliations.csv.
const ReconciliationsHeader = "id,debit_line_id,credit_line_id,debit_move_id,credit_move_id,max_date"

const dateFormat = "2006-01-02"

const (
	moveFields      = 14
	colMoveID       = 0
	colMoveNumber   = 1
	colMoveRef      = 2
	colMoveDate     = 3
	colMoveCompany  = 4
	colMoveJournal  = 5
	colMoveJType    = 6
	colMoveType     = 7
	colMoveState    = 8
	colMovePayState = 9
	colMovePartner  = 10
	colMoveVAT      = 11
	colMoveTotal    = 12
	colMoveRecID    = 13
)

const (
	lineFields     = 9
	colLineID      = 0
	colLineMoveID  = 1
	colLineAccount = 2
	colLineName    = 3
	colLineDebit   = 4
	colLineCredit  = 5
	colLineTags    = 6
	colLineDisplay = 7
	colLineDue     = 8
)

const (
	recFields        = 6
	colRecID         = 0
	colRecDebitLine  = 1
	colRecCreditLine = 2
	colRecDebitMove  = 3
	colRecCreditMove = 4
	colRecMaxDate    = 5
)

// Load reads a snapshot directory into a Memory source.
func Load(dir string) (*Memory, error) {
	moves, err := readFile(filepath.Join(dir, "moves.csv"), moveFields, UnmarshalMove)
	if err != nil {
		return nil, fmt.Errorf("loading moves: %w", err)
	}

	lines, err := readFile(filepath.Join(dir, "lines.csv"), lineFields, UnmarshalLine)
	if err != nil {
		return nil, fmt.Errorf("loading lines: %w", err)
	}

	recs, err := readFile(filepath.Join(dir, "reconciliations.csv"), recFields, UnmarshalReconciliation)
	if err != nil {
		return nil, fmt.Errorf("loading reconciliations: %w", err)
	}

	byMove := make(map[int64][]model.Line)
	for _, l := range lines {
		byMove[l.MoveID] = append(byMove[l.MoveID], l)
	}
	for i := range moves {
		moves[i].Lines = byMove[moves[i].ID]
	}

	return NewMemory(moves, recs), nil
}

func readFile[T any](path string, fields int, unmarshal func([]string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return readRecords(f, fields, unmarshal)
}

func readRecords[T any](r io.Reader, fields int, unmarshal func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []T
	for i, rec := range records[1:] {
		v, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// MarshalMove converts a Move (without its lines) to a CSV row.
func MarshalMove(m model.Move) []string {
	row := make([]string, moveFields)
	row[colMoveID] = strconv.FormatInt(m.ID, 10)
	row[colMoveNumber] = m.Number
	row[colMoveRef] = m.Ref
	row[colMoveDate] = m.Date.Format(dateFormat)
	row[colMoveCompany] = strconv.FormatInt(m.CompanyID, 10)
	row[colMoveJournal] = m.JournalCode
	row[colMoveJType] = string(m.JournalType)
	row[colMoveType] = string(m.Type)
	row[colMoveState] = string(m.State)
	row[colMovePayState] = string(m.PaymentState)
	row[colMovePartner] = m.PartnerName
	row[colMoveVAT] = m.PartnerVAT
	row[colMoveTotal] = m.AmountTotalSigned.StringFixed(2)
	if m.CashBasisRecID != 0 {
		row[colMoveRecID] = strconv.FormatInt(m.CashBasisRecID, 10)
	}
	return row
}

// UnmarshalMove converts a CSV row to a Move.
func UnmarshalMove(record []string) (model.Move, error) {
	if len(record) != moveFields {
		return model.Move{}, fmt.Errorf("expected %d fields, got %d", moveFields, len(record))
	}

	id, err := strconv.ParseInt(record[colMoveID], 10, 64)
	if err != nil {
		return model.Move{}, fmt.Errorf("parsing id %q: %w", record[colMoveID], err)
	}

	date, err := time.Parse(dateFormat, record[colMoveDate])
	if err != nil {
		return model.Move{}, fmt.Errorf("parsing date %q: %w", record[colMoveDate], err)
	}

	companyID, err := strconv.ParseInt(record[colMoveCompany], 10, 64)
	if err != nil {
		return model.Move{}, fmt.Errorf("parsing company_id %q: %w", record[colMoveCompany], err)
	}

	total, err := decimal.NewFromString(record[colMoveTotal])
	if err != nil {
		return model.Move{}, fmt.Errorf("parsing amount_total_signed %q: %w", record[colMoveTotal], err)
	}

	var recID int64
	if record[colMoveRecID] != "" {
		recID, err = strconv.ParseInt(record[colMoveRecID], 10, 64)
		if err != nil {
			return model.Move{}, fmt.Errorf("parsing cash_basis_rec_id %q: %w", record[colMoveRecID], err)
		}
	}

	return model.Move{
		ID:                id,
		Number:            record[colMoveNumber],
		Ref:               record[colMoveRef],
		Date:              date,
		CompanyID:         companyID,
		JournalCode:       record[colMoveJournal],
		JournalType:       model.JournalType(record[colMoveJType]),
		Type:              model.MoveType(record[colMoveType]),
		State:             model.MoveState(record[colMoveState]),
		PaymentState:      model.PaymentState(record[colMovePayState]),
		PartnerName:       record[colMovePartner],
		PartnerVAT:        record[colMoveVAT],
		AmountTotalSigned: total,
		CashBasisRecID:    recID,
	}, nil
}

// MarshalLine converts a Line to a CSV row. Tags are
// semicolon-separated.
func MarshalLine(l model.Line) []string {
	row := make([]string, lineFields)
	row[colLineID] = strconv.FormatInt(l.ID, 10)
	row[colLineMoveID] = strconv.FormatInt(l.MoveID, 10)
	row[colLineAccount] = l.AccountCode
	row[colLineName] = l.Name
	if !l.Debit.IsZero() {
		row[colLineDebit] = l.Debit.StringFixed(2)
	}
	if !l.Credit.IsZero() {
		row[colLineCredit] = l.Credit.StringFixed(2)
	}
	row[colLineTags] = strings.Join(l.TaxTags, ";")
	row[colLineDisplay] = string(l.Display)
	if l.TaxDueLater {
		row[colLineDue] = "true"
	}
	return row
}

// UnmarshalLine converts a CSV row to a Line.
func UnmarshalLine(record []string) (model.Line, error) {
	if len(record) != lineFields {
		return model.Line{}, fmt.Errorf("expected %d fields, got %d", lineFields, len(record))
	}

	id, err := strconv.ParseInt(record[colLineID], 10, 64)
	if err != nil {
		return model.Line{}, fmt.Errorf("parsing id %q: %w", record[colLineID], err)
	}

	moveID, err := strconv.ParseInt(record[colLineMoveID], 10, 64)
	if err != nil {
		return model.Line{}, fmt.Errorf("parsing move_id %q: %w", record[colLineMoveID], err)
	}

	var debit, credit decimal.Decimal
	if record[colLineDebit] != "" {
		debit, err = decimal.NewFromString(record[colLineDebit])
		if err != nil {
			return model.Line{}, fmt.Errorf("parsing debit %q: %w", record[colLineDebit], err)
		}
	}
	if record[colLineCredit] != "" {
		credit, err = decimal.NewFromString(record[colLineCredit])
		if err != nil {
			return model.Line{}, fmt.Errorf("parsing credit %q: %w", record[colLineCredit], err)
		}
	}

	var tags []string
	if record[colLineTags] != "" {
		tags = strings.Split(record[colLineTags], ";")
	}

	return model.Line{
		ID:          id,
		MoveID:      moveID,
		AccountCode: record[colLineAccount],
		Name:        record[colLineName],
		Debit:       debit,
		Credit:      credit,
		TaxTags:     tags,
		Display:     model.DisplayKind(record[colLineDisplay]),
		TaxDueLater: record[colLineDue] == "true",
	}, nil
}

// MarshalReconciliation converts a Reconciliation to a CSV row.
func MarshalReconciliation(r model.Reconciliation) []string {
	row := make([]string, recFields)
	row[colRecID] = strconv.FormatInt(r.ID, 10)
	row[colRecDebitLine] = strconv.FormatInt(r.DebitLineID, 10)
	row[colRecCreditLine] = strconv.FormatInt(r.CreditLineID, 10)
	row[colRecDebitMove] = strconv.FormatInt(r.DebitMoveID, 10)
	row[colRecCreditMove] = strconv.FormatInt(r.CreditMoveID, 10)
	row[colRecMaxDate] = r.MaxDate.Format(dateFormat)
	return row
}

// UnmarshalReconciliation converts a CSV row to a Reconciliation.
func UnmarshalReconciliation(record []string) (model.Reconciliation, error) {
	if len(record) != recFields {
		return model.Reconciliation{}, fmt.Errorf("expected %d fields, got %d", recFields, len(record))
	}

	ints := make([]int64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseInt(record[i], 10, 64)
		if err != nil {
			return model.Reconciliation{}, fmt.Errorf("parsing field %d %q: %w", i, record[i], err)
		}
		ints[i] = v
	}

	maxDate, err := time.Parse(dateFormat, record[colRecMaxDate])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing max_date %q: %w", record[colRecMaxDate], err)
	}

	return model.Reconciliation{
		ID:           ints[colRecID],
		DebitLineID:  ints[colRecDebitLine],
		CreditLineID: ints[colRecCreditLine],
		DebitMoveID:  ints[colRecDebitMove],
		CreditMoveID: ints[colRecCreditMove],
		MaxDate:      maxDate,
	}, nil
}

// WriteSnapshot writes a full snapshot directory. Used by tests and
// for exporting fixtures.
func WriteSnapshot(dir string, moves []model.Move, recs []model.Reconciliation) error {
	var lines []model.Line
	for _, mv := range moves {
		lines = append(lines, mv.Lines...)
	}

	if err := writeFile(filepath.Join(dir, "moves.csv"), MovesHeader, moves, MarshalMove); err != nil {
		return fmt.Errorf("writing moves: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "lines.csv"), LinesHeader, lines, MarshalLine); err != nil {
		return fmt.Errorf("writing lines: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "reconciliations.csv"), ReconciliationsHeader, recs, MarshalReconciliation); err != nil {
		return fmt.Errorf("writing reconciliations: %w", err)
	}
	return nil
}

func writeFile[T any](path, header string, items []T, marshal func(T) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, item := range items {
		if err := cw.Write(marshal(item)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
