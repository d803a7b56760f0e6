package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequestDays(t *testing.T) {
	from := date(2024, time.June, 10)

	if got := RequestDays(from, from, true); !got.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("half day should be 0.5, got %s", got)
	}
	if got := RequestDays(from, from, false); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("single day should be 1, got %s", got)
	}
	if got := RequestDays(from, date(2024, time.June, 12), false); !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("inclusive three-day span should be 3, got %s", got)
	}
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		aFrom, aTo, bFrom, bTo time.Time
		want                   bool
	}{
		{"contained", date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 12), date(2024, 6, 20), true},
		{"identical", date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 10), date(2024, 6, 15), true},
		{"touching end", date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 15), date(2024, 6, 18), true},
		{"disjoint after", date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 16), date(2024, 6, 18), false},
		{"disjoint before", date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 1), date(2024, 6, 9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RangesOverlap(tt.aFrom, tt.aTo, tt.bFrom, tt.bTo); got != tt.want {
				t.Fatalf("RangesOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawsOnPool(t *testing.T) {
	if !DrawsOnPool(TypePaid) || !DrawsOnPool(TypeUnpaid) {
		t.Fatal("Paid and Unpaid draw on the accrual pool")
	}
	for _, bucketType := range []string{TypeCasual, TypeSick, TypeEarned, TypeMaternity, TypePaternity, TypeBereavement} {
		if DrawsOnPool(bucketType) {
			t.Fatalf("%s must not draw on the pool", bucketType)
		}
	}
}

func TestBucketFor(t *testing.T) {
	if got := BucketFor(TypeCasual); got != "casual" {
		t.Fatalf("expected casual, got %s", got)
	}
	if got := BucketFor(TypeBereavement); got != "bereavement" {
		t.Fatalf("expected bereavement, got %s", got)
	}
}

func TestPaidCoverage(t *testing.T) {
	three := decimal.NewFromInt(3)
	half := decimal.NewFromFloat(0.5)

	if got := PaidCoverage(decimal.NewFromInt(5), three); !got.Equal(three) {
		t.Fatalf("full coverage expected 3, got %s", got)
	}
	// Partial coverage is accepted and records only the covered part.
	if got := PaidCoverage(decimal.NewFromInt(2), three); !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("partial coverage expected 2, got %s", got)
	}
	if got := PaidCoverage(half, half); !got.Equal(half) {
		t.Fatalf("half-day coverage expected 0.5, got %s", got)
	}
	if got := PaidCoverage(decimal.Zero, half); !got.IsZero() {
		t.Fatalf("empty pool expected 0, got %s", got)
	}
}

func TestTransitionAllowed(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusApproved, StatusRejected},
	}
	for _, pair := range allowed {
		if !transitionAllowed(pair[0], pair[1]) {
			t.Fatalf("%s -> %s should be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{StatusApproved, StatusApproved},
		{StatusRejected, StatusApproved},
		{StatusRejected, StatusRejected},
		{StatusApproved, StatusPending},
		{StatusRejected, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, pair := range denied {
		if transitionAllowed(pair[0], pair[1]) {
			t.Fatalf("%s -> %s should be denied", pair[0], pair[1])
		}
	}
}

func TestMidnightUTC(t *testing.T) {
	in := time.Date(2024, time.June, 10, 18, 45, 12, 0, time.FixedZone("X", 3*3600))
	got := MidnightUTC(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Fatalf("expected UTC midnight, got %v", got)
	}
	if got.Day() != 10 {
		t.Fatalf("expected day 10, got %d", got.Day())
	}
}
