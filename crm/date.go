/*
date.go - Day-granularity dates for the settlement calendar

PURPOSE:
  Settlement math is entirely day-based: cutoff dates, payout dates, deposit
  dates. This file provides a Date type normalized to midnight UTC so that
  comparisons and weekday arithmetic never depend on clock time or timezone.

KEY CONCEPTS:
  - Date: A calendar day (midnight UTC internally)
  - StartOfWeek: Roll back to the most recent occurrence of a weekday
  - ParseDate: Multi-format parsing with a fixed fallback order

WEEK CONVENTION:
  Weekdays use time.Weekday (Sunday=0 .. Saturday=6) everywhere. Cutoff and
  payout configuration uses the same convention, so there is exactly one
  weekday numbering in the system.

PARSING:
  ParseDate tries ISO (2006-01-02) first, then RFC3339, then the locale
  formats seen in imported spreadsheet data. It returns ok=false on total
  failure instead of an error so callers can distinguish "unparseable" from
  "parsed as unexpected value". Entry points that must not proceed with a
  bad date wrap the failure in InvalidDateError (see errors.go).

SEE ALSO:
  - errors.go: InvalidDateError / ErrInvalidDate
  - settlement/schedule.go: Weekday arithmetic consumer
*/
package crm

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day, midnight UTC
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return FromTime(time.Now().UTC())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.normalize().Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// StartOfWeek rolls the date back to the most recent occurrence of the given
// weekday. A date already on that weekday is returned unchanged.
func (d Date) StartOfWeek(weekStartsOn time.Weekday) Date {
	delta := (int(d.Weekday()) - int(weekStartsOn) + 7) % 7
	return d.AddDays(-delta)
}

// MonthKey returns the yyyy-MM bucket used by monthly reports.
func (d Date) MonthKey() string {
	return d.normalize().Format("2006-01")
}

func (d Date) String() string {
	return d.normalize().Format("2006-01-02")
}

func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// JSON - Dates travel as "yyyy-MM-dd" strings
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &InvalidDateError{Input: s}
	}
	s = s[1 : len(s)-1]
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return &InvalidDateError{Input: s}
	}
	*d = parsed
	return nil
}

// =============================================================================
// PARSING - Fixed fallback order, ISO first
// =============================================================================

// dateFormats is the parse order for raw date strings. ISO is authoritative;
// the rest cover spreadsheet imports and legacy records.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006.01.02",
	"2006/01/02",
	"01/02/2006",
	"2006-1-2",
}

// ParseDate parses a date string, trying each known format in order.
// Returns ok=false when no format matches.
func ParseDate(s string) (Date, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}

// MustParseDate is a test/fixture helper; it panics on bad input.
func MustParseDate(s string) Date {
	d, ok := ParseDate(s)
	if !ok {
		panic(fmt.Sprintf("unparseable date: %q", s))
	}
	return d
}
