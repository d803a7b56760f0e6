package leave

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"workforce/internal/db"
	"workforce/internal/platform/cache"
)

// newLeaveHarness provisions one employee with the default bucket grants and
// the given tenure, and returns a service wired to the test database.
func newLeaveHarness(t *testing.T, joinDate time.Time) (*Service, string) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(ctx, pool, "../../../migrations"); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}

	code := fmt.Sprintf("LT%d", time.Now().UnixNano())
	var employeeID string
	err = pool.QueryRow(ctx,
		`INSERT INTO employees (code, first_name, last_name, email, join_date)
		 VALUES ($1, 'Leave', 'Tester', $2, $3)
		 RETURNING id::text`,
		code, code+"@test.local", joinDate).Scan(&employeeID)
	if err != nil {
		pool.Close()
		t.Fatalf("insert employee: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO leave_balances (employee_id, casual, sick, earned, maternity, paternity, bereavement)
		 VALUES ($1, 12, 8, 20, 90, 7, 7)`, employeeID)
	if err != nil {
		pool.Close()
		t.Fatalf("insert balances: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM employees WHERE id = $1`, employeeID)
		pool.Close()
	})

	return NewService(NewStore(pool), cache.NewMemory(), time.Minute), employeeID
}

func twoYearsTenure() time.Time {
	return time.Now().UTC().AddDate(-2, 0, -5)
}

func TestBucketLifecycle(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	req, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeCasual,
		From:       from,
		To:         from.AddDate(0, 0, 2),
		Reason:     "family event",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("new request status = %s, want pending", req.Status)
	}
	if !req.Days.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("days = %s, want 3", req.Days)
	}

	// Pending requests must not touch the stored bucket.
	balances, err := svc.BucketBalances(ctx, employeeID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !balances.Casual.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("casual after create = %s, want 12", balances.Casual)
	}

	approved, err := svc.SetStatus(ctx, req.ID, StatusApproved, "manager@test.local", "", "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovedBy != "manager@test.local" || approved.ApprovedAt == nil {
		t.Fatal("approval metadata not recorded")
	}

	balances, err = svc.BucketBalances(ctx, employeeID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !balances.Casual.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("casual after approve = %s, want 9", balances.Casual)
	}

	// Revoking an approval restores exactly what the approval took.
	if _, err = svc.SetStatus(ctx, req.ID, StatusRejected, "", "plans changed", ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	balances, err = svc.BucketBalances(ctx, employeeID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !balances.Casual.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("casual after revoke = %s, want 12", balances.Casual)
	}

	// rejected is terminal.
	if _, err = svc.SetStatus(ctx, req.ID, StatusApproved, "manager@test.local", "", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approve after reject = %v, want ErrInvalidTransition", err)
	}
}

func TestOverlapGuard(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	if _, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeSick,
		From:       from,
		To:         from.AddDate(0, 0, 4),
		Reason:     "surgery recovery",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeCasual,
		From:       from.AddDate(0, 0, 2),
		To:         from.AddDate(0, 0, 6),
		Reason:     "travel",
	})
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("overlapping create = %v, want ErrOverlap", err)
	}

	// A rejected request frees its range.
	reqs, err := svc.List(ctx, RequestFilter{EmployeeID: employeeID})
	if err != nil || len(reqs) != 1 {
		t.Fatalf("list: %v (%d rows)", err, len(reqs))
	}
	if _, err := svc.SetStatus(ctx, reqs[0].ID, StatusRejected, "", "not needed", ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeCasual,
		From:       from.AddDate(0, 0, 2),
		To:         from.AddDate(0, 0, 6),
		Reason:     "travel",
	}); err != nil {
		t.Fatalf("create after reject: %v", err)
	}
}

func TestConcurrentOverlappingCreates(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	// Two racing submissions for the same window. The balance-row lock
	// serializes them, so the loser must re-read after the winner commits
	// and see the overlap.
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Create(ctx, CreateInput{
				EmployeeID: employeeID,
				Type:       TypeCasual,
				From:       from,
				To:         from.AddDate(0, 0, 2),
				Reason:     "same window",
			})
			results <- err
		}()
	}

	var created, overlapped int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			created++
		case errors.Is(err, ErrOverlap):
			overlapped++
		default:
			t.Fatalf("racing create: %v", err)
		}
	}
	if created != 1 || overlapped != 1 {
		t.Fatalf("created=%d overlapped=%d, want exactly one of each", created, overlapped)
	}

	reqs, err := svc.List(ctx, RequestFilter{EmployeeID: employeeID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("requests stored = %d, want 1", len(reqs))
	}
}

func TestConcurrentApprovals(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	var ids [2]string
	for i := range ids {
		req, err := svc.Create(ctx, CreateInput{
			EmployeeID: employeeID,
			Type:       TypeCasual,
			From:       from.AddDate(0, 0, i*10),
			To:         from.AddDate(0, 0, i*10+2),
			Reason:     "batch",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids[i] = req.ID
	}

	// Approving both at once must not lose either deduction.
	results := make(chan error, len(ids))
	for _, id := range ids {
		go func(id string) {
			_, err := svc.SetStatus(ctx, id, StatusApproved, "manager@test.local", "", "")
			results <- err
		}(id)
	}
	for range ids {
		if err := <-results; err != nil {
			t.Fatalf("racing approve: %v", err)
		}
	}

	balances, err := svc.BucketBalances(ctx, employeeID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !balances.Casual.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("casual after both approvals = %s, want 6", balances.Casual)
	}
}

func TestPaidPoolAccounting(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	before, err := svc.PoolBalance(ctx, employeeID)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if before.Earned < 23 {
		t.Fatalf("earned = %d, expected roughly two years of credits", before.Earned)
	}

	req, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypePaid,
		From:       from,
		IsHalfDay:  true,
		Reason:     "appointment",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !req.Days.Equal(decimal.NewFromFloat(0.5)) || !req.PaidDays.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("half day recorded as days=%s paidDays=%s", req.Days, req.PaidDays)
	}

	mid, err := svc.PoolBalance(ctx, employeeID)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if !mid.Pending.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("pending = %s, want 0.5", mid.Pending)
	}
	if !mid.Available.Equal(before.Available) {
		t.Fatalf("available moved before approval: %s -> %s", before.Available, mid.Available)
	}

	if _, err := svc.SetStatus(ctx, req.ID, StatusApproved, "manager@test.local", "", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	after, err := svc.PoolBalance(ctx, employeeID)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if !after.Consumed.Equal(before.Consumed.Add(decimal.NewFromFloat(0.5))) {
		t.Fatalf("consumed = %s, want %s", after.Consumed, before.Consumed.Add(decimal.NewFromFloat(0.5)))
	}
	if !after.Available.Equal(before.Available.Sub(decimal.NewFromFloat(0.5))) {
		t.Fatalf("available = %s, want %s", after.Available, before.Available.Sub(decimal.NewFromFloat(0.5)))
	}
}

func TestPaidPartialCoverage(t *testing.T) {
	// One complete month of tenure: a single earned credit.
	svc, employeeID := newLeaveHarness(t, time.Now().UTC().AddDate(0, -1, -5))
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	req, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypePaid,
		From:       from,
		To:         from.AddDate(0, 0, 2),
		Reason:     "long weekend",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !req.Days.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("days = %s, want 3", req.Days)
	}
	if !req.PaidDays.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("paidDays = %s, want the 1 covered day", req.PaidDays)
	}
}

func TestPaidEmptyPoolRejected(t *testing.T) {
	// Joined days ago; no complete month, no credits.
	svc, employeeID := newLeaveHarness(t, time.Now().UTC().AddDate(0, 0, -3))
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	_, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypePaid,
		From:       from,
		Reason:     "day off",
	})
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("empty pool create = %v, want InsufficientBalanceError", err)
	}
	if insufficient.Bucket != "paid" {
		t.Fatalf("bucket = %s, want paid", insufficient.Bucket)
	}
}

func TestBucketInsufficientAtCreation(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	_, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypePaternity,
		From:       from,
		To:         from.AddDate(0, 0, 9), // 10 days against a grant of 7
		Reason:     "newborn",
	})
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("oversized bucket create = %v, want InsufficientBalanceError", err)
	}
	if insufficient.Bucket != "paternity" {
		t.Fatalf("bucket = %s, want paternity", insufficient.Bucket)
	}
}

func TestDeleteApprovedRestoresBucket(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	req, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeSick,
		From:       from,
		To:         from.AddDate(0, 0, 1),
		Reason:     "flu",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(ctx, req.ID, StatusApproved, "manager@test.local", "", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svc.Delete(ctx, req.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	balances, err := svc.BucketBalances(ctx, employeeID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !balances.Sick.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("sick after delete = %s, want 8", balances.Sick)
	}

	if _, err := svc.Get(ctx, req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted = %v, want ErrNotFound", err)
	}
}

func TestStatistics(t *testing.T) {
	svc, employeeID := newLeaveHarness(t, twoYearsTenure())
	ctx := context.Background()
	from := MidnightUTC(time.Now().UTC().AddDate(0, 1, 0))

	first, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeCasual,
		From:       from,
		To:         from.AddDate(0, 0, 1),
		Reason:     "errand",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{
		EmployeeID: employeeID,
		Type:       TypeUnpaid,
		From:       from.AddDate(0, 0, 10),
		Reason:     "personal",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(ctx, first.ID, StatusApproved, "manager@test.local", "", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	stats, err := svc.Statistics(ctx, employeeID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 || stats.Approved != 1 || stats.Pending != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
