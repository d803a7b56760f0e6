package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/platform/querier"
)

const taskColumns = `
    id, title, COALESCE(description,''), type, category, target, achieved,
    unit, deadline, priority, status, assigned_to, assigned_by,
    COALESCE(notes,''), recurring, COALESCE(recurrence,''),
    created_at, updated_at`

const submissionColumns = `
    id, task_id, employee_id, count, COALESCE(notes,''), submitted_at,
    verified, COALESCE(verified_by,''), verified_at`

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.Pool.BeginTx(ctx, pgx.TxOptions{})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Type, &t.Category, &t.Target,
		&t.Achieved, &t.Unit, &t.Deadline, &t.Priority, &t.Status,
		&t.AssignedTo, &t.AssignedBy, &t.Notes, &t.Recurring, &t.Recurrence,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	err := row.Scan(
		&sub.ID, &sub.TaskID, &sub.EmployeeID, &sub.Count, &sub.Notes,
		&sub.SubmittedAt, &sub.Verified, &sub.VerifiedBy, &sub.VerifiedAt,
	)
	return sub, err
}

func (s *Store) Insert(ctx context.Context, db querier.Querier, t Task) (Task, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO tasks
      (title, description, type, category, target, unit, deadline, priority,
       status, assigned_to, assigned_by, notes, recurring, recurrence)
    VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9, $10, $11,
            NULLIF($12,''), $13, NULLIF($14,''))
    RETURNING `+taskColumns,
		t.Title, t.Description, t.Type, t.Category, t.Target, t.Unit,
		t.Deadline, t.Priority, t.Status, t.AssignedTo, t.AssignedBy,
		t.Notes, t.Recurring, t.Recurrence)
	return scanTask(row)
}

func (s *Store) Get(ctx context.Context, db querier.Querier, id string) (Task, error) {
	row := db.QueryRow(ctx, "SELECT"+taskColumns+" FROM tasks WHERE id = $1", id)
	return scanTask(row)
}

// GetForUpdate locks the task row so racing progress changes serialize on
// it.
func (s *Store) GetForUpdate(ctx context.Context, db querier.Querier, id string) (Task, error) {
	row := db.QueryRow(ctx, "SELECT"+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id)
	return scanTask(row)
}

type Filter struct {
	Type       string
	Status     string
	Category   string
	AssignedTo string
	AssignedBy string
	Search     string
}

func (s *Store) List(ctx context.Context, db querier.Querier, filter Filter) ([]Task, error) {
	query := "SELECT" + taskColumns + " FROM tasks WHERE 1=1"
	var args []any
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	if filter.AssignedBy != "" {
		args = append(args, filter.AssignedBy)
		query += fmt.Sprintf(" AND assigned_by = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", n, n)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) Update(ctx context.Context, db querier.Querier, t Task) (Task, error) {
	row := db.QueryRow(ctx, `
    UPDATE tasks
    SET title = $2, description = NULLIF($3,''), type = $4, category = $5,
        target = $6, unit = $7, deadline = $8, priority = $9, status = $10,
        assigned_to = $11, notes = NULLIF($12,''), recurring = $13,
        recurrence = NULLIF($14,''), updated_at = now()
    WHERE id = $1
    RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Type, t.Category, t.Target, t.Unit,
		t.Deadline, t.Priority, t.Status, t.AssignedTo, t.Notes, t.Recurring,
		t.Recurrence)
	return scanTask(row)
}

// SetProgress writes the recomputed achieved count and status.
func (s *Store) SetProgress(ctx context.Context, db querier.Querier, id string, achieved int, status string) error {
	tag, err := db.Exec(ctx, `
    UPDATE tasks SET achieved = $2, status = $3, updated_at = now()
    WHERE id = $1`, id, achieved, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, db querier.Querier, id string) error {
	tag, err := db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertSubmission(ctx context.Context, db querier.Querier, sub Submission) (Submission, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO task_submissions (task_id, employee_id, count, notes)
    VALUES ($1, $2, $3, NULLIF($4,''))
    RETURNING `+submissionColumns,
		sub.TaskID, sub.EmployeeID, sub.Count, sub.Notes)
	return scanSubmission(row)
}

func (s *Store) GetSubmission(ctx context.Context, db querier.Querier, id string) (Submission, error) {
	row := db.QueryRow(ctx, "SELECT"+submissionColumns+" FROM task_submissions WHERE id = $1", id)
	return scanSubmission(row)
}

type SubmissionFilter struct {
	TaskID     string
	EmployeeID string
	Verified   *bool
	From       time.Time
	To         time.Time
}

func (s *Store) ListSubmissions(ctx context.Context, db querier.Querier, filter SubmissionFilter) ([]Submission, error) {
	query := "SELECT" + submissionColumns + " FROM task_submissions WHERE 1=1"
	var args []any
	if filter.TaskID != "" {
		args = append(args, filter.TaskID)
		query += fmt.Sprintf(" AND task_id = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		query += fmt.Sprintf(" AND verified = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND submitted_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND submitted_at <= $%d", len(args))
	}
	query += " ORDER BY submitted_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) VerifySubmission(ctx context.Context, db querier.Querier, id, verifiedBy string) (Submission, error) {
	row := db.QueryRow(ctx, `
    UPDATE task_submissions
    SET verified = true, verified_by = NULLIF($2,''), verified_at = now()
    WHERE id = $1
    RETURNING `+submissionColumns, id, verifiedBy)
	return scanSubmission(row)
}

func (s *Store) DeleteSubmission(ctx context.Context, db querier.Querier, id string) error {
	tag, err := db.Exec(ctx, "DELETE FROM task_submissions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// CountSubmissions returns total and verified submission counts across the
// employee's assigned tasks.
func (s *Store) CountSubmissions(ctx context.Context, db querier.Querier, employeeID string) (total, verified int, err error) {
	err = db.QueryRow(ctx, `
    SELECT COUNT(1), COUNT(1) FILTER (WHERE ts.verified)
    FROM task_submissions ts
    JOIN tasks t ON t.id = ts.task_id
    WHERE t.assigned_to = $1`, employeeID).Scan(&total, &verified)
	return total, verified, err
}
