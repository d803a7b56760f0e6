package leave

import "time"

// EarnedCredits returns the whole number of paid-leave credits accrued
// between joinDate and asOf. One credit accrues per complete calendar month
// of tenure, anchored on the join day-of-month: the running month does not
// count until asOf reaches that day. Never negative.
//
// The comparison is the plain day-of-month check, with no clamping for
// months shorter than the join day: an employee who joined on the 31st gets
// no credit inside February, and the deferred credit lands when the month
// difference ticks over on March 1st.
func EarnedCredits(joinDate, asOf time.Time) int {
	months := (asOf.Year()-joinDate.Year())*12 + int(asOf.Month()) - int(joinDate.Month())
	if asOf.Day() < joinDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// NextCreditDate returns the next monthly anniversary of the join day on or
// after asOf.
func NextCreditDate(joinDate, asOf time.Time) time.Time {
	day := joinDate.Day()
	month := asOf.Month()
	year := asOf.Year()
	if asOf.Day() >= day {
		month++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, asOf.Location())
}
