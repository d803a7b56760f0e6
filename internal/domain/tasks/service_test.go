package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/db"
)

// newTaskHarness provisions an assignee and a manager and returns a service
// wired to the test database.
func newTaskHarness(t *testing.T) (*Service, string, string) {
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

	insert := func(role string) string {
		code := fmt.Sprintf("TK%s%d", role, time.Now().UnixNano())
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO employees (code, first_name, last_name, email, join_date)
			 VALUES ($1, 'Task', $2, $3, $4)
			 RETURNING id::text`,
			code, role, code+"@test.local", time.Now().UTC().AddDate(-1, 0, 0)).Scan(&id)
		if err != nil {
			pool.Close()
			t.Fatalf("insert employee: %v", err)
		}
		return id
	}
	assignee := insert("Assignee")
	manager := insert("Manager")

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM employees WHERE id = ANY($1::uuid[])`, []string{assignee, manager})
		pool.Close()
	})

	return NewService(NewStore(pool)), assignee, manager
}

func sampleTask(assignee, manager string) CreateInput {
	return CreateInput{
		Title:      "Screen applications",
		Type:       TypeWeekly,
		Category:   "applications",
		Target:     10,
		Unit:       "applications",
		Deadline:   time.Now().UTC().AddDate(0, 0, 7),
		AssignedTo: assignee,
		AssignedBy: manager,
	}
}

func TestTaskProgressLifecycle(t *testing.T) {
	svc, assignee, manager := newTaskHarness(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, sampleTask(assignee, manager))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != StatusActive || task.Achieved != 0 {
		t.Fatalf("new task = %s/%d, want active/0", task.Status, task.Achieved)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("default priority = %s, want medium", task.Priority)
	}

	// Only the assignee may report progress.
	if _, _, err := svc.Submit(ctx, task.ID, manager, 3, ""); !errors.Is(err, ErrNotAssignee) {
		t.Fatalf("foreign submit = %v, want ErrNotAssignee", err)
	}

	sub, updated, err := svc.Submit(ctx, task.ID, assignee, 4, "first batch")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if updated.Achieved != 4 || updated.Status != StatusActive {
		t.Fatalf("after first submit = %d/%s, want 4/active", updated.Achieved, updated.Status)
	}

	// An oversized report caps at the target and completes the task.
	_, updated, err = svc.Submit(ctx, task.ID, assignee, 9, "rest")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if updated.Achieved != 10 || updated.Status != StatusCompleted {
		t.Fatalf("after completion = %d/%s, want 10/completed", updated.Achieved, updated.Status)
	}

	// Deleting a submission hands its count back and reopens the task.
	if err := svc.DeleteSubmission(ctx, sub.ID); err != nil {
		t.Fatalf("delete submission: %v", err)
	}
	task, err = svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Achieved != 6 || task.Status != StatusActive {
		t.Fatalf("after rollback = %d/%s, want 6/active", task.Achieved, task.Status)
	}
}

func TestVerifySubmission(t *testing.T) {
	svc, assignee, manager := newTaskHarness(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, sampleTask(assignee, manager))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, _, err := svc.Submit(ctx, task.ID, assignee, 2, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	verified, err := svc.Verify(ctx, sub.ID, "manager@test.local")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.Verified || verified.VerifiedBy != "manager@test.local" || verified.VerifiedAt == nil {
		t.Fatalf("verification metadata missing: %+v", verified)
	}

	yes := true
	subs, err := svc.Submissions(ctx, SubmissionFilter{TaskID: task.ID, Verified: &yes})
	if err != nil {
		t.Fatalf("submissions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("verified submissions = %d, want 1", len(subs))
	}
}

func TestEmployeeTaskStats(t *testing.T) {
	svc, assignee, manager := newTaskHarness(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, sampleTask(assignee, manager))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	in := sampleTask(assignee, manager)
	in.Title = "Run interviews"
	in.Category = "interviews"
	in.Target = 4
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.Submit(ctx, first.ID, assignee, 10, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := svc.StatsFor(ctx, assignee)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 || stats.Active != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TotalSubmissions != 1 {
		t.Fatalf("submissions = %d, want 1", stats.TotalSubmissions)
	}
	// 10 of 14 across both targets.
	if stats.CompletionRate < 71 || stats.CompletionRate > 72 {
		t.Fatalf("completion rate = %v, want ~71.4", stats.CompletionRate)
	}
}

func TestCreateRejectsUnknownAssignee(t *testing.T) {
	svc, _, manager := newTaskHarness(t)
	ctx := context.Background()

	in := sampleTask("00000000-0000-0000-0000-000000000000", manager)
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("create with unknown assignee = %v, want ErrEmployeeNotFound", err)
	}
}
