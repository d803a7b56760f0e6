package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"workforce/internal/platform/querier"
)

const recordColumns = `
    id, employee_id, day, check_in, check_out, total_hours, status,
    COALESCE(location,''), COALESCE(notes,''), created_at, updated_at`

const breakColumns = `
    id, employee_id, day, start_time, end_time, duration_minutes, status,
    COALESCE(reason,''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Day, &r.CheckIn, &r.CheckOut, &r.TotalHours,
		&r.Status, &r.Location, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func scanBreak(row rowScanner) (Break, error) {
	var b Break
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Day, &b.StartTime, &b.EndTime,
		&b.DurationMinutes, &b.Status, &b.Reason, &b.CreatedAt,
	)
	return b, err
}

// InsertCheckIn records the day's check-in in a single statement. The upsert
// claims the unique (employee_id, day) slot; the WHERE guard makes it a
// no-op when a check-in already exists, which the caller sees as no returned
// row. An admin-marked day without a check-in (absent, on_leave) is taken
// over by the real clock-in.
func (s *Store) InsertCheckIn(ctx context.Context, db querier.Querier, employeeID string, day, at time.Time, status, location, notes string) (Record, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, day, check_in, status, location, notes)
    VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''))
    ON CONFLICT (employee_id, day) DO UPDATE
    SET check_in = EXCLUDED.check_in,
        status = EXCLUDED.status,
        location = COALESCE(EXCLUDED.location, attendance.location),
        notes = COALESCE(EXCLUDED.notes, attendance.notes),
        updated_at = now()
    WHERE attendance.check_in IS NULL
    RETURNING `+recordColumns,
		employeeID, day, at, status, location, notes)
	return scanRecord(row)
}

func (s *Store) GetDay(ctx context.Context, db querier.Querier, employeeID string, day time.Time) (Record, error) {
	row := db.QueryRow(ctx,
		"SELECT"+recordColumns+" FROM attendance WHERE employee_id = $1 AND day = $2",
		employeeID, day)
	return scanRecord(row)
}

// GetDayForUpdate locks the employee-day row, serializing clock-out and
// break-completion recomputes against each other.
func (s *Store) GetDayForUpdate(ctx context.Context, db querier.Querier, employeeID string, day time.Time) (Record, error) {
	row := db.QueryRow(ctx,
		"SELECT"+recordColumns+" FROM attendance WHERE employee_id = $1 AND day = $2 FOR UPDATE",
		employeeID, day)
	return scanRecord(row)
}

func (s *Store) CloseDay(ctx context.Context, db querier.Querier, id string, at time.Time, totalHours decimal.Decimal, status, location, notes string) (Record, error) {
	row := db.QueryRow(ctx, `
    UPDATE attendance
    SET check_out = $2,
        total_hours = $3,
        status = $4,
        location = COALESCE(NULLIF($5,''), location),
        notes = COALESCE(NULLIF($6,''), notes),
        updated_at = now()
    WHERE id = $1
    RETURNING `+recordColumns,
		id, at, totalHours, status, location, notes)
	return scanRecord(row)
}

// UpdateTotals rewrites a closed day's derived fields after a break edit.
func (s *Store) UpdateTotals(ctx context.Context, db querier.Querier, id string, totalHours decimal.Decimal, status string) error {
	_, err := db.Exec(ctx, `
    UPDATE attendance
    SET total_hours = $2, status = $3, updated_at = now()
    WHERE id = $1
  `, id, totalHours, status)
	return err
}

// MarkDay upserts an admin-assigned status for an employee-day without
// touching any recorded clock times.
func (s *Store) MarkDay(ctx context.Context, db querier.Querier, employeeID string, day time.Time, status, notes string) (Record, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, day, status, notes)
    VALUES ($1, $2, $3, NULLIF($4,''))
    ON CONFLICT (employee_id, day) DO UPDATE
    SET status = EXCLUDED.status,
        notes = COALESCE(EXCLUDED.notes, attendance.notes),
        updated_at = now()
    RETURNING `+recordColumns,
		employeeID, day, status, notes)
	return scanRecord(row)
}

type RecordFilter struct {
	EmployeeID string
	Status     string
	From       time.Time
	To         time.Time
}

func (s *Store) ListRecords(ctx context.Context, db querier.Querier, filter RecordFilter) ([]Record, error) {
	query := "SELECT" + recordColumns + " FROM attendance WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	query += " ORDER BY day DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) DeleteRecord(ctx context.Context, db querier.Querier, id string) error {
	tag, err := db.Exec(ctx, "DELETE FROM attendance WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertBreak(ctx context.Context, db querier.Querier, employeeID string, day, start time.Time, reason string) (Break, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO breaks (employee_id, day, start_time, status, reason)
    VALUES ($1, $2, $3, $4, NULLIF($5,''))
    RETURNING `+breakColumns,
		employeeID, day, start, BreakActive, reason)
	return scanBreak(row)
}

func (s *Store) GetBreakForUpdate(ctx context.Context, db querier.Querier, id string) (Break, error) {
	row := db.QueryRow(ctx,
		"SELECT"+breakColumns+" FROM breaks WHERE id = $1 FOR UPDATE", id)
	return scanBreak(row)
}

func (s *Store) ActiveBreak(ctx context.Context, db querier.Querier, employeeID string, day time.Time) (Break, error) {
	row := db.QueryRow(ctx,
		"SELECT"+breakColumns+" FROM breaks WHERE employee_id = $1 AND day = $2 AND status = $3",
		employeeID, day, BreakActive)
	return scanBreak(row)
}

func (s *Store) CompleteBreak(ctx context.Context, db querier.Querier, id string, end time.Time, durationMinutes int) (Break, error) {
	row := db.QueryRow(ctx, `
    UPDATE breaks
    SET end_time = $2, duration_minutes = $3, status = $4
    WHERE id = $1
    RETURNING `+breakColumns,
		id, end, durationMinutes, BreakCompleted)
	return scanBreak(row)
}

// CompletedBreakMinutes sums the day's finished breaks; an active break does
// not count until it ends.
func (s *Store) CompletedBreakMinutes(ctx context.Context, db querier.Querier, employeeID string, day time.Time) (int, error) {
	var minutes int
	err := db.QueryRow(ctx, `
    SELECT COALESCE(SUM(duration_minutes), 0)
    FROM breaks
    WHERE employee_id = $1 AND day = $2 AND status = $3
  `, employeeID, day, BreakCompleted).Scan(&minutes)
	return minutes, err
}

func (s *Store) ListBreaks(ctx context.Context, db querier.Querier, employeeID string, day time.Time) ([]Break, error) {
	rows, err := db.Query(ctx,
		"SELECT"+breakColumns+" FROM breaks WHERE employee_id = $1 AND day = $2 ORDER BY start_time",
		employeeID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breaks []Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}
