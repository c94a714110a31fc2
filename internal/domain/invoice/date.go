package invoice

import (
	"fmt"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	compactDateLayout = "20060102"
)

// ErrInvalidDate indicates a malformed or non-existent calendar date.
type ErrInvalidDate struct {
	Value string
}

func (e ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date: %q", e.Value)
}

// Date is an immutable calendar date with no time-of-day or timezone
// semantics. The zero value means "not set".
type Date struct {
	t time.Time
}

// DateFromISO parses a YYYY-MM-DD string. Non-existent calendar dates
// (e.g. 2026-02-30) are rejected.
func DateFromISO(value string) (Date, error) {
	t, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return Date{}, ErrInvalidDate{Value: value}
	}
	return Date{t: t}, nil
}

// DateFromCompact parses the authority's YYYYMMDD representation.
func DateFromCompact(value string) (Date, error) {
	t, err := time.Parse(compactDateLayout, value)
	if err != nil {
		return Date{}, ErrInvalidDate{Value: value}
	}
	return Date{t: t}, nil
}

// DateFromTime truncates a time.Time to its calendar date. Used when
// hydrating persisted values.
func DateFromTime(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.t.Format(isoDateLayout)
}

// Compact renders the date in the authority's YYYYMMDD format.
func (d Date) Compact() string {
	return d.t.Format(compactDateLayout)
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time exposes the underlying time.Time for persistence.
func (d Date) Time() time.Time {
	return d.t
}
