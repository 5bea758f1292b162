package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rojournal-dev/rojournal/internal/auditlog"
	"github.com/rojournal-dev/rojournal/internal/config"
	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

// Params describe one report invocation.
type Params struct {
	CompanyID   int64
	DateFrom    time.Time
	DateTo      time.Time
	JournalType model.JournalType
	// ShowWarnings is a display toggle passed through to the renderer;
	// rows with warnings are always computed and included.
	ShowWarnings bool
	User         string
}

// Payload is the structured record handed to the rendering layer.
type Payload struct {
	PrintedAt    time.Time
	DateFrom     time.Time
	DateTo       time.Time
	ShowWarnings bool
	User         string
	Company      config.CompanyConfig
	Rows         []*Row
	Totals       Totals
	IsSale       bool
}

// Service computes journal reports over a read-only Source. Each run
// is a single-threaded pass over an immutable snapshot; the Service
// itself holds no per-run state, so concurrent runs are safe as long
// as the Source supports concurrent reads.
type Service struct {
	src              Source
	reg              *schema.Registry
	company          config.CompanyConfig
	controlPrefixes  []string
	cashBasisJournal string
	log              zerolog.Logger
	audit            *auditlog.Recorder
}

// NewService wires a report Service from its collaborators. audit may
// be nil to disable the audit trail.
func NewService(src Source, reg *schema.Registry, cfg *config.Config, log zerolog.Logger, audit *auditlog.Recorder) *Service {
	s := &Service{
		src:              src,
		reg:              reg,
		company:          cfg.Company,
		controlPrefixes:  cfg.Accounts.ControlPrefixes,
		cashBasisJournal: cfg.Accounts.CashBasisJournal,
		log:              log,
		audit:            audit,
	}
	if len(s.controlPrefixes) == 0 {
		s.controlPrefixes = []string{"411", "401"}
	}
	for _, c := range reg.Collisions() {
		audit.Record(auditlog.Entry{
			Component: "schema",
			Event:     auditlog.EventTagCollision,
			Detail:    c.String(),
			Column:    c.Columns[0],
		})
	}
	return s
}

// Run computes the report for the given period and journal type.
func (s *Service) Run(ctx context.Context, p Params) (*Payload, error) {
	if p.JournalType != model.JournalSale && p.JournalType != model.JournalPurchase {
		return nil, fmt.Errorf("unsupported journal type %q", p.JournalType)
	}
	if p.DateTo.Before(p.DateFrom) {
		return nil, fmt.Errorf("date_to %s precedes date_from %s",
			p.DateTo.Format("2006-01-02"), p.DateFrom.Format("2006-01-02"))
	}

	invoices, err := s.selectInvoices(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("selecting invoices: %w", err)
	}

	rows := make([]*Row, 0, len(invoices))
	for _, inv := range invoices {
		row := s.classify(inv, p.JournalType)
		if row.CashBasis && row.controlLineID != 0 {
			if err := s.walkSettlements(ctx, row, p); err != nil {
				return nil, fmt.Errorf("walking settlements for %s: %w", inv.Number, err)
			}
		}
		rows = append(rows, row)
	}

	totals := ComputeTotals(s.reg, rows)

	s.log.Info().
		Str("journal_type", string(p.JournalType)).
		Time("date_from", p.DateFrom).
		Time("date_to", p.DateTo).
		Int("rows", len(rows)).
		Msg("journal report computed")

	return &Payload{
		PrintedAt:    time.Now(),
		DateFrom:     p.DateFrom,
		DateTo:       p.DateTo,
		ShowWarnings: p.ShowWarnings,
		User:         p.User,
		Company:      s.company,
		Rows:         rows,
		Totals:       totals,
		IsSale:       p.JournalType == model.JournalSale,
	}, nil
}

// signedNet applies the journal sign to a line's credit-debit net.
func signedNet(line model.Line, sign decimal.Decimal) decimal.Decimal {
	return sign.Mul(line.Net())
}
