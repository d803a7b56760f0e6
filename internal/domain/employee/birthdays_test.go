package employee

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	birthday := date(1990, time.June, 15)

	if got := NextOccurrence(birthday, date(2024, time.June, 1)); !got.Equal(date(2024, time.June, 15)) {
		t.Fatalf("before = %s, want this year", got)
	}
	if got := NextOccurrence(birthday, date(2024, time.June, 15)); !got.Equal(date(2024, time.June, 15)) {
		t.Fatalf("same day = %s, want today", got)
	}
	if got := NextOccurrence(birthday, date(2024, time.June, 16)); !got.Equal(date(2025, time.June, 15)) {
		t.Fatalf("after = %s, want next year", got)
	}

	// 29 February rolls to 1 March when the year has no leap day.
	leapling := date(1992, time.February, 29)
	if got := NextOccurrence(leapling, date(2023, time.January, 10)); !got.Equal(date(2023, time.March, 1)) {
		t.Fatalf("non-leap year = %s, want 1 March", got)
	}
	if got := NextOccurrence(leapling, date(2024, time.January, 10)); !got.Equal(date(2024, time.February, 29)) {
		t.Fatalf("leap year = %s, want 29 February", got)
	}
}

func TestDaysUntil(t *testing.T) {
	birthday := date(1985, time.December, 31)

	if got := DaysUntil(birthday, date(2024, time.December, 31)); got != 0 {
		t.Fatalf("today = %d, want 0", got)
	}
	if got := DaysUntil(birthday, date(2024, time.December, 1)); got != 30 {
		t.Fatalf("30 days out = %d, want 30", got)
	}
	// New-year wrap.
	if got := DaysUntil(birthday, date(2025, time.January, 1)); got != 364 {
		t.Fatalf("day after = %d, want 364", got)
	}
}
