package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the CLI/CSV date layout used throughout the report.
const DateFormat = "2006-01-02"

// Parse parses a fiscal period like "2025-01" into its first and last
// day (both inclusive).
func Parse(p string) (from, to time.Time, err error) {
	parts := strings.SplitN(p, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period format: %q (want YYYY-MM)", p)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid year in period %q: %w", p, err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month in period %q: %w", p, err)
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month out of range in period %q", p)
	}

	return Bounds(year, month)
}

// Bounds returns the first and last day of a month.
func Bounds(year, month int) (from, to time.Time, err error) {
	if year < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("year out of range: %d", year)
	}
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to, nil
}

// Format returns the period label for a date, e.g. "2025-01".
func Format(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseDate parses a single report boundary date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
