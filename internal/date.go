package internal

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// timestampLayouts are the timestamp forms accepted in date fields
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Date is a calendar date in zero-padded YYYY-MM-DD form.
// Only values produced by ParseDate (or Today) are valid; for those,
// plain string comparison matches calendar ordering.
type Date string

// ParseDate validates s as a calendar date. Timestamps whose first ten characters
// are a date followed by 'T' or ' ' and a valid time of day are truncated to the date part.
func ParseDate(s string) (Date, error) {
	if len(s) > len(dateLayout) && (s[10] == 'T' || s[10] == ' ') {
		if !isTimestamp(s) {
			return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
		}
		s = s[:10]
	}
	if len(s) != len(dateLayout) {
		return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i == 4 || i == 7 {
			if c != '-' {
				return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
			}
			continue
		}
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
		}
	}
	// time.Parse rejects impossible days such as 2024-02-30
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return Date(s), nil
}

func isTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// MustParseDate is ParseDate for constants and tests
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the calendar date of t in t's location
func Today(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) String() string {
	return string(d)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d < other
}

// Time returns the date at midnight UTC
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, string(d))
	}
	return t, nil
}

// DaysSince returns the number of whole days from d until later (negative if later is before d)
func (d Date) DaysSince(later Date) (int, error) {
	from, err := d.Time()
	if err != nil {
		return 0, err
	}
	to, err := later.Time()
	if err != nil {
		return 0, err
	}
	// time.Duration saturates beyond ~292 years
	return int((to.Unix() - from.Unix()) / 86400), nil
}

func parseOptionalDate(s *string) (*Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
