package attendance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// dayZone is the reference zone for attendance-day boundaries. All
// employee-days roll over at this zone's midnight no matter where the
// request came from, so a late-evening check-out lands on the same day as
// its morning check-in.
var dayZone = loadDayZone()

func loadDayZone() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// lateAfterMinutes is the minute-of-day after which a clock-in counts as
// late: 09:30.
const lateAfterMinutes = 9*60 + 30

// halfDayUnder is the worked-hours threshold below which a completed day is
// downgraded to half_day.
var halfDayUnder = decimal.NewFromInt(4)

// DayOf maps an instant to its attendance day: the calendar date in the
// reference zone, stored as a UTC midnight.
func DayOf(t time.Time) time.Time {
	local := t.In(dayZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// StatusAt derives the clock-in status from the local time of day.
func StatusAt(t time.Time) string {
	local := t.In(dayZone)
	if local.Hour()*60+local.Minute() > lateAfterMinutes {
		return StatusLate
	}
	return StatusPresent
}

// WorkedHours computes the day's total: the check-in to check-out span minus
// completed break time, clamped at zero and rounded to two decimals.
func WorkedHours(checkIn, checkOut time.Time, breakMinutes int) decimal.Decimal {
	hours := checkOut.Sub(checkIn).Hours() - float64(breakMinutes)/60
	if hours < 0 {
		hours = 0
	}
	return decimal.NewFromFloat(hours).Round(2)
}

// IsHalfDay reports whether a completed day's total falls under the
// half-day threshold.
func IsHalfDay(totalHours decimal.Decimal) bool {
	return totalHours.LessThan(halfDayUnder)
}

// BreakDuration is the length of a completed break rounded to the nearest
// whole minute, clamped at zero.
func BreakDuration(start, end time.Time) int {
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes < 0 {
		return 0
	}
	return minutes
}

// closedDayStatus recomputes the status of a day that has both check-in and
// check-out: the total decides half_day, otherwise the clock-in verdict
// stands. Deriving from the check-in instant keeps the recompute stable when
// a later break edit runs it again.
func closedDayStatus(checkIn time.Time, totalHours decimal.Decimal) string {
	if IsHalfDay(totalHours) {
		return StatusHalfDay
	}
	return StatusAt(checkIn)
}

func KnownStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
