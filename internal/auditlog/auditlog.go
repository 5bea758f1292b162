// Package auditlog keeps a CSV trail of schema collisions and
// multi-column tag applications, so fan-out attributions in a filed
// report can be traced back afterwards.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one row in the report audit log.
type Entry struct {
	Timestamp time.Time
	Component string
	Event     string
	Detail    string
	Invoice   string
	Column    string
}

// Header is the CSV header for report-audit.csv.
const Header = "timestamp,component,event,detail,invoice,column"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/report-audit.csv"
	colTimestamp = 0
	colComponent = 1
	colEvent     = 2
	colDetail    = 3
	colInvoice   = 4
	colColumn    = 5
)

// Event names written by the report engine.
const (
	EventTagCollision = "tag-collision"
	EventFanOut       = "multi-column-fan-out"
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colComponent] = e.Component
	row[colEvent] = e.Event
	row[colDetail] = e.Detail
	row[colInvoice] = e.Invoice
	row[colColumn] = e.Column
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Component: record[colComponent],
		Event:     record[colEvent],
		Detail:    record[colDetail],
		Invoice:   record[colInvoice],
		Column:    record[colColumn],
	}, nil
}

// Append writes entries to <dir>/logs/report-audit.csv, creating the
// file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/logs/report-audit.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder appends audit entries without ever failing the report: IO
// errors are logged and dropped. A nil Recorder records nothing.
type Recorder struct {
	dir string
	log zerolog.Logger
}

// NewRecorder creates a Recorder writing under dir.
func NewRecorder(dir string, log zerolog.Logger) *Recorder {
	return &Recorder{dir: dir, log: log}
}

// Record appends one entry, stamping it with the current time.
func (r *Recorder) Record(e Entry) {
	if r == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := Append(r.dir, []Entry{e}); err != nil {
		r.log.Warn().Err(err).Msg("dropping audit log entry")
	}
}
