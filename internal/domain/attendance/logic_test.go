package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDayOf(t *testing.T) {
	// 23:30 local on June 10 is 03:30 UTC June 11; the attendance day must
	// still be June 10.
	lateEvening := time.Date(2024, time.June, 10, 23, 30, 0, 0, dayZone)
	day := DayOf(lateEvening.UTC())
	if day.Year() != 2024 || day.Month() != time.June || day.Day() != 10 {
		t.Fatalf("day = %v, want 2024-06-10", day)
	}
	if day.Location() != time.UTC || day.Hour() != 0 {
		t.Fatalf("day must be a UTC midnight, got %v", day)
	}

	// Shortly after local midnight the day rolls over.
	earlyMorning := time.Date(2024, time.June, 11, 0, 10, 0, 0, dayZone)
	if got := DayOf(earlyMorning.UTC()); got.Day() != 11 {
		t.Fatalf("day = %v, want 2024-06-11", got)
	}
}

func TestStatusAt(t *testing.T) {
	onTime := time.Date(2024, time.June, 10, 9, 30, 0, 0, dayZone)
	if got := StatusAt(onTime); got != StatusPresent {
		t.Fatalf("09:30 exactly = %s, want present", got)
	}
	late := time.Date(2024, time.June, 10, 9, 31, 0, 0, dayZone)
	if got := StatusAt(late); got != StatusLate {
		t.Fatalf("09:31 = %s, want late", got)
	}
	early := time.Date(2024, time.June, 10, 8, 0, 0, 0, dayZone)
	if got := StatusAt(early); got != StatusPresent {
		t.Fatalf("08:00 = %s, want present", got)
	}
}

func TestWorkedHours(t *testing.T) {
	checkIn := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	got := WorkedHours(checkIn, checkIn.Add(8*time.Hour), 60)
	if !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("8h span minus 60m break = %s, want 7", got)
	}

	got = WorkedHours(checkIn, checkIn.Add(7*time.Hour+45*time.Minute), 30)
	if !got.Equal(decimal.NewFromFloat(7.25)) {
		t.Fatalf("7h45m minus 30m = %s, want 7.25", got)
	}

	// Breaks longer than the span clamp to zero rather than going negative.
	got = WorkedHours(checkIn, checkIn.Add(30*time.Minute), 90)
	if !got.IsZero() {
		t.Fatalf("clamped total = %s, want 0", got)
	}

	got = WorkedHours(checkIn, checkIn.Add(7*time.Hour+20*time.Minute), 0)
	if !got.Equal(decimal.NewFromFloat(7.33)) {
		t.Fatalf("7h20m rounds to %s, want 7.33", got)
	}
}

func TestIsHalfDay(t *testing.T) {
	if IsHalfDay(decimal.NewFromInt(4)) {
		t.Fatal("exactly 4 hours is a full day")
	}
	if !IsHalfDay(decimal.NewFromFloat(3.99)) {
		t.Fatal("3.99 hours is a half day")
	}
}

func TestBreakDuration(t *testing.T) {
	start := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	if got := BreakDuration(start, start.Add(45*time.Minute)); got != 45 {
		t.Fatalf("45m break = %d, want 45", got)
	}
	// Sub-minute remainders round to the nearest minute.
	if got := BreakDuration(start, start.Add(10*time.Minute+40*time.Second)); got != 11 {
		t.Fatalf("10m40s break = %d, want 11", got)
	}
	if got := BreakDuration(start, start.Add(10*time.Minute+20*time.Second)); got != 10 {
		t.Fatalf("10m20s break = %d, want 10", got)
	}
	if got := BreakDuration(start, start.Add(-time.Minute)); got != 0 {
		t.Fatalf("negative span = %d, want 0", got)
	}
}

func TestClosedDayStatus(t *testing.T) {
	onTime := time.Date(2024, time.June, 10, 9, 0, 0, 0, dayZone)
	late := time.Date(2024, time.June, 10, 10, 0, 0, 0, dayZone)

	if got := closedDayStatus(onTime, decimal.NewFromInt(8)); got != StatusPresent {
		t.Fatalf("full on-time day = %s, want present", got)
	}
	if got := closedDayStatus(late, decimal.NewFromInt(8)); got != StatusLate {
		t.Fatalf("full late day = %s, want late", got)
	}
	// A short day overrides the clock-in verdict either way.
	if got := closedDayStatus(late, decimal.NewFromInt(3)); got != StatusHalfDay {
		t.Fatalf("short late day = %s, want half_day", got)
	}
}
