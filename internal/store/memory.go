// Package store provides the read-only data sources behind the
// report: a Postgres implementation, an in-memory implementation, and
// a CSV snapshot loader feeding the latter.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/report"
)

// Memory is an in-memory report.Source over immutable snapshots. Used
// by tests and by the CSV data path of the CLI.
type Memory struct {
	moves []model.Move
	recs  []model.Reconciliation
}

// NewMemory creates a Memory source. The slices are not copied; the
// caller must not mutate them afterwards.
func NewMemory(moves []model.Move, recs []model.Reconciliation) *Memory {
	return &Memory{moves: moves, recs: recs}
}

// FetchInvoices returns moves matching the filter, ordered by
// (date, number) ascending.
func (m *Memory) FetchInvoices(_ context.Context, f report.InvoiceFilter) ([]model.Move, error) {
	var ids map[int64]bool
	if len(f.IDs) > 0 {
		ids = make(map[int64]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}

	var out []model.Move
	for _, mv := range m.moves {
		if ids != nil && !ids[mv.ID] {
			continue
		}
		if f.CompanyID != 0 && mv.CompanyID != f.CompanyID {
			continue
		}
		if f.State != "" && mv.State != f.State {
			continue
		}
		if len(f.Types) > 0 && !containsType(f.Types, mv.Type) {
			continue
		}
		if !f.DateFrom.IsZero() && mv.Date.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && mv.Date.After(f.DateTo) {
			continue
		}
		if !f.DateBefore.IsZero() && !mv.Date.Before(f.DateBefore) {
			continue
		}
		if len(f.PaymentStates) > 0 && !containsPayment(f.PaymentStates, mv.PaymentState) {
			continue
		}
		if f.RequireCashBasis && !mv.IsCashBasis() {
			continue
		}
		out = append(out, mv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

// FetchReconciliations returns reconciliations matching the filter.
func (m *Memory) FetchReconciliations(_ context.Context, f report.ReconciliationFilter) ([]model.Reconciliation, error) {
	var ids map[int64]bool
	if len(f.IDs) > 0 {
		ids = make(map[int64]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}

	var out []model.Reconciliation
	for _, rec := range m.recs {
		if ids != nil && !ids[rec.ID] {
			continue
		}
		if f.LineID != 0 && !rec.Touches(f.LineID) {
			continue
		}
		if !f.MaxDateTo.IsZero() && rec.MaxDate.After(f.MaxDateTo) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchMoves returns moves matching the filter, ordered by
// (date, number) ascending.
func (m *Memory) FetchMoves(_ context.Context, f report.MoveFilter) ([]model.Move, error) {
	var ids, recIDs map[int64]bool
	if len(f.IDs) > 0 {
		ids = make(map[int64]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}
	if len(f.ReconciliationIDs) > 0 {
		recIDs = make(map[int64]bool, len(f.ReconciliationIDs))
		for _, id := range f.ReconciliationIDs {
			recIDs[id] = true
		}
	}

	var out []model.Move
	for _, mv := range m.moves {
		if ids != nil && !ids[mv.ID] {
			continue
		}
		if recIDs != nil && !recIDs[mv.CashBasisRecID] {
			continue
		}
		if f.CompanyID != 0 && mv.CompanyID != f.CompanyID {
			continue
		}
		if f.JournalCode != "" && mv.JournalCode != f.JournalCode {
			continue
		}
		if f.Type != "" && mv.Type != f.Type {
			continue
		}
		if f.State != "" && mv.State != f.State {
			continue
		}
		if !inRange(mv.Date, f.DateFrom, f.DateTo) {
			continue
		}
		out = append(out, mv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func containsType(types []model.MoveType, t model.MoveType) bool {
	for _, mt := range types {
		if mt == t {
			return true
		}
	}
	return false
}

func containsPayment(states []model.PaymentState, s model.PaymentState) bool {
	for _, ps := range states {
		if ps == s {
			return true
		}
	}
	return false
}

func inRange(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}
