package leave

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DrawsOnPool reports whether a leave type is settled against the derived
// accrual pool. Every other type draws on a stored bucket.
func DrawsOnPool(leaveType string) bool {
	return leaveType == TypePaid || leaveType == TypeUnpaid
}

// BucketFor maps a bucket leave type to its stored balance column.
func BucketFor(leaveType string) string {
	return strings.ToLower(leaveType)
}

func KnownType(leaveType string) bool {
	for _, t := range Types {
		if t == leaveType {
			return true
		}
	}
	return false
}

// RequestDays returns the day count of a request: 0.5 for a half day,
// otherwise the inclusive calendar span between from and to, minimum 1.
func RequestDays(from, to time.Time, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return decimal.NewFromFloat(0.5)
	}
	span := to.Sub(from).Hours() / 24
	days := int64(math.Ceil(span)) + 1
	if days < 1 {
		days = 1
	}
	return decimal.NewFromInt(days)
}

// RangesOverlap reports whether two inclusive date ranges intersect on at
// least one day.
func RangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}

// PaidCoverage returns how many of the requested days the accrual pool can
// cover: all of them when the pool suffices, the remaining pool when it only
// partially covers, zero when the pool is exhausted. Partial coverage is
// accepted (the request proceeds with paidDays < days); only a fully empty
// pool blocks a Paid request.
func PaidCoverage(available, requested decimal.Decimal) decimal.Decimal {
	if available.GreaterThanOrEqual(requested) {
		return requested
	}
	if available.IsPositive() {
		return available
	}
	return decimal.Zero
}

// MidnightUTC truncates an instant to its UTC calendar date.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
