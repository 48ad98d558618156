package internal

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		wantErr  bool
	}{
		{"2024-06-01", "2024-06-01", false},
		{"2024-02-29", "2024-02-29", false},
		{"2024-06-01T10:30:00Z", "2024-06-01", false},
		{"2024-06-01 10:30:00", "2024-06-01", false},
		{"2024-06-01T10:30:00.123-04:00", "2024-06-01", false},
		{"2024-06-01 10:30", "2024-06-01", false},
		{"2024-01-01Tgarbage", "", true},
		{"2024-01-01 ", "", true},
		{"2024-01-01 25:00:00", "", true},
		{"2024-6-1", "", true},
		{"2023-02-29", "", true},
		{"2024-13-01", "", true},
		{"01-06-2024", "", true},
		{"2024/06/01", "", true},
		{"2024-06-01x", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedDate) {
					t.Errorf("ParseDate(%q) error = %v, want ErrMalformedDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_Before(t *testing.T) {
	if !MustParseDate("2023-12-31").Before(MustParseDate("2024-01-01")) {
		t.Error("expected 2023-12-31 before 2024-01-01")
	}
	if MustParseDate("2024-06-01").Before(MustParseDate("2024-06-01")) {
		t.Error("a date is not before itself")
	}
	if MustParseDate("2024-10-01").Before(MustParseDate("2024-09-30")) {
		t.Error("expected 2024-10-01 after 2024-09-30")
	}
}

func TestDate_DaysSince(t *testing.T) {
	days, err := MustParseDate("2024-01-01").DaysSince(MustParseDate("2024-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 365 {
		t.Errorf("DaysSince = %d, want 365", days)
	}

	days, _ = MustParseDate("2024-03-10").DaysSince(MustParseDate("2024-03-01"))
	if days != -9 {
		t.Errorf("DaysSince = %d, want -9", days)
	}

	days, _ = MustParseDate("0001-01-01").DaysSince(MustParseDate("9999-12-31"))
	if days != 3652058 {
		t.Errorf("DaysSince across the full range = %d, want 3652058", days)
	}

	if _, err := Date("bogus").DaysSince(MustParseDate("2024-03-01")); !errors.Is(err, ErrMalformedDate) {
		t.Errorf("expected ErrMalformedDate, got %v", err)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("CLT", -4*3600)
	ts := time.Date(2024, 6, 1, 23, 30, 0, 0, loc)
	if got := Today(ts); got != "2024-06-01" {
		t.Errorf("Today() = %q, want 2024-06-01", got)
	}
}
