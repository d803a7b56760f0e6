package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEarnedCredits(t *testing.T) {
	join := date(2024, time.January, 15)

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"before first anniversary", date(2024, time.February, 14), 0},
		{"on first anniversary", date(2024, time.February, 15), 1},
		{"second month incomplete", date(2024, time.March, 10), 1},
		{"second month complete", date(2024, time.March, 20), 2},
		{"same day as join", date(2024, time.January, 15), 0},
		{"a year later", date(2025, time.January, 15), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EarnedCredits(join, tt.asOf); got != tt.want {
				t.Fatalf("EarnedCredits(%v, %v) = %d, want %d", join, tt.asOf, got, tt.want)
			}
		})
	}
}

func TestEarnedCreditsNeverNegative(t *testing.T) {
	join := date(2024, time.June, 1)
	if got := EarnedCredits(join, date(2024, time.March, 1)); got != 0 {
		t.Fatalf("expected 0 before join date, got %d", got)
	}
}

func TestEarnedCreditsMonotonic(t *testing.T) {
	join := date(2023, time.July, 31)
	prev := 0
	for day := date(2023, time.July, 31); day.Before(date(2025, time.January, 1)); day = day.AddDate(0, 0, 1) {
		got := EarnedCredits(join, day)
		if got < prev {
			t.Fatalf("accrual decreased at %v: %d -> %d", day, prev, got)
		}
		prev = got
	}
}

func TestEarnedCreditsDay31ShortMonths(t *testing.T) {
	// Joining on the 31st defers the credit past months that never reach
	// day 31; February completes nothing until March 31.
	join := date(2024, time.January, 31)
	if got := EarnedCredits(join, date(2024, time.February, 29)); got != 0 {
		t.Fatalf("expected 0 on Feb 29, got %d", got)
	}
	if got := EarnedCredits(join, date(2024, time.March, 30)); got != 1 {
		t.Fatalf("expected 1 on Mar 30, got %d", got)
	}
	if got := EarnedCredits(join, date(2024, time.March, 31)); got != 2 {
		t.Fatalf("expected 2 on Mar 31, got %d", got)
	}
}

func TestNextCreditDate(t *testing.T) {
	join := date(2024, time.January, 15)

	next := NextCreditDate(join, date(2024, time.March, 10))
	if !next.Equal(date(2024, time.March, 15)) {
		t.Fatalf("expected 2024-03-15, got %v", next)
	}

	next = NextCreditDate(join, date(2024, time.March, 15))
	if !next.Equal(date(2024, time.April, 15)) {
		t.Fatalf("expected 2024-04-15, got %v", next)
	}

	next = NextCreditDate(join, date(2024, time.December, 20))
	if !next.Equal(date(2025, time.January, 15)) {
		t.Fatalf("expected 2025-01-15, got %v", next)
	}
}
