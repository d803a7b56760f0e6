package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"workforce/internal/platform/querier"
)

const requestColumns = `
    id, employee_id, type, from_date, to_date, days, is_half_day, is_paid,
    paid_days, status, reason, COALESCE(contact_during_leave,''),
    COALESCE(address_during_leave,''), COALESCE(approved_by,''), approved_at,
    COALESCE(rejection_reason,''), COALESCE(manager_notes,''), applied_at`

var bucketColumns = map[string]bool{
	"casual":      true,
	"sick":        true,
	"earned":      true,
	"maternity":   true,
	"paternity":   true,
	"bereavement": true,
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.From, &req.To, &req.Days,
		&req.IsHalfDay, &req.IsPaid, &req.PaidDays, &req.Status, &req.Reason,
		&req.ContactDuringLeave, &req.AddressDuringLeave, &req.ApprovedBy,
		&req.ApprovedAt, &req.RejectionReason, &req.ManagerNotes, &req.AppliedAt,
	)
	return req, err
}

func (s *Store) JoinDate(ctx context.Context, db querier.Querier, employeeID string) (time.Time, error) {
	var joinDate time.Time
	err := db.QueryRow(ctx, "SELECT join_date FROM employees WHERE id = $1", employeeID).Scan(&joinDate)
	return joinDate, err
}

// LockBalances takes the employee's balance row lock. Every balance-affecting
// leave operation for an employee passes through this lock, which is what
// serializes concurrent creates and approvals against each other.
func (s *Store) LockBalances(ctx context.Context, db querier.Querier, employeeID string) (BucketBalances, error) {
	row := db.QueryRow(ctx, `
    SELECT employee_id, casual, sick, earned, maternity, paternity, bereavement, updated_at
    FROM leave_balances
    WHERE employee_id = $1
    FOR UPDATE
  `, employeeID)
	return scanBalances(row)
}

func (s *Store) GetBalances(ctx context.Context, db querier.Querier, employeeID string) (BucketBalances, error) {
	row := db.QueryRow(ctx, `
    SELECT employee_id, casual, sick, earned, maternity, paternity, bereavement, updated_at
    FROM leave_balances
    WHERE employee_id = $1
  `, employeeID)
	return scanBalances(row)
}

func scanBalances(row rowScanner) (BucketBalances, error) {
	var b BucketBalances
	err := row.Scan(
		&b.EmployeeID, &b.Casual, &b.Sick, &b.Earned,
		&b.Maternity, &b.Paternity, &b.Bereavement, &b.UpdatedAt,
	)
	return b, err
}

// AdjustBucket applies a signed delta to one bucket column. The column name
// is validated against the fixed bucket set before it is interpolated.
func (s *Store) AdjustBucket(ctx context.Context, db querier.Querier, employeeID, bucket string, delta decimal.Decimal) error {
	if !bucketColumns[bucket] {
		return fmt.Errorf("unknown leave bucket %q", bucket)
	}
	query := fmt.Sprintf(`
    UPDATE leave_balances
    SET %s = %s + $1, updated_at = now()
    WHERE employee_id = $2
  `, bucket, bucket)
	_, err := db.Exec(ctx, query, delta, employeeID)
	return err
}

// SetBalances overwrites the whole bucket row, the admin override path.
func (s *Store) SetBalances(ctx context.Context, db querier.Querier, b BucketBalances) (BucketBalances, error) {
	row := db.QueryRow(ctx, `
    UPDATE leave_balances
    SET casual = $2, sick = $3, earned = $4,
        maternity = $5, paternity = $6, bereavement = $7,
        updated_at = now()
    WHERE employee_id = $1
    RETURNING employee_id, casual, sick, earned, maternity, paternity, bereavement, updated_at
  `, b.EmployeeID, b.Casual, b.Sick, b.Earned, b.Maternity, b.Paternity, b.Bereavement)
	return scanBalances(row)
}

func (s *Store) HasOverlap(ctx context.Context, db querier.Querier, employeeID string, from, to time.Time) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM leave_requests
      WHERE employee_id = $1
        AND status IN ($2, $3)
        AND from_date <= $4
        AND to_date >= $5
    )
  `, employeeID, StatusPending, StatusApproved, to, from).Scan(&exists)
	return exists, err
}

// ConsumedPaidDays sums paid days of approved paid requests, the consumption
// side of the derived accrual pool.
func (s *Store) ConsumedPaidDays(ctx context.Context, db querier.Querier, employeeID string) (decimal.Decimal, error) {
	var consumed decimal.Decimal
	err := db.QueryRow(ctx, `
    SELECT COALESCE(SUM(paid_days), 0)
    FROM leave_requests
    WHERE employee_id = $1 AND is_paid = true AND status = $2
  `, employeeID, StatusApproved).Scan(&consumed)
	return consumed, err
}

func (s *Store) PendingPaidDays(ctx context.Context, db querier.Querier, employeeID string) (decimal.Decimal, error) {
	var pending decimal.Decimal
	err := db.QueryRow(ctx, `
    SELECT COALESCE(SUM(paid_days), 0)
    FROM leave_requests
    WHERE employee_id = $1 AND is_paid = true AND status = $2
  `, employeeID, StatusPending).Scan(&pending)
	return pending, err
}

func (s *Store) InsertRequest(ctx context.Context, db querier.Querier, req Request) (Request, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO leave_requests
      (employee_id, type, from_date, to_date, days, is_half_day, is_paid,
       paid_days, status, reason, contact_during_leave, address_during_leave)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,''),NULLIF($12,''))
    RETURNING `+requestColumns,
		req.EmployeeID, req.Type, req.From, req.To, req.Days, req.IsHalfDay,
		req.IsPaid, req.PaidDays, req.Status, req.Reason,
		req.ContactDuringLeave, req.AddressDuringLeave)
	return scanRequest(row)
}

func (s *Store) GetRequest(ctx context.Context, db querier.Querier, id string) (Request, error) {
	row := db.QueryRow(ctx, "SELECT"+requestColumns+" FROM leave_requests WHERE id = $1", id)
	return scanRequest(row)
}

func (s *Store) GetRequestForUpdate(ctx context.Context, db querier.Querier, id string) (Request, error) {
	row := db.QueryRow(ctx, "SELECT"+requestColumns+" FROM leave_requests WHERE id = $1 FOR UPDATE", id)
	return scanRequest(row)
}

type RequestFilter struct {
	EmployeeID string
	Status     string
	From       time.Time
	To         time.Time
}

func (s *Store) ListRequests(ctx context.Context, db querier.Querier, filter RequestFilter) ([]Request, error) {
	query := "SELECT" + requestColumns + " FROM leave_requests WHERE 1=1"
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
		query += fmt.Sprintf(" AND from_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND from_date <= $%d", len(args))
	}
	query += " ORDER BY applied_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) UpdateRequestStatus(ctx context.Context, db querier.Querier, id, status, approvedBy, rejectionReason, managerNotes string, approvedAt *time.Time) (Request, error) {
	row := db.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $2,
        approved_by = NULLIF($3,''),
        approved_at = $4,
        rejection_reason = NULLIF($5,''),
        manager_notes = COALESCE(NULLIF($6,''), manager_notes)
    WHERE id = $1
    RETURNING `+requestColumns,
		id, status, approvedBy, approvedAt, rejectionReason, managerNotes)
	return scanRequest(row)
}

func (s *Store) DeleteRequest(ctx context.Context, db querier.Querier, id string) error {
	tag, err := db.Exec(ctx, "DELETE FROM leave_requests WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Statistics(ctx context.Context, db querier.Querier, employeeID string) (Statistics, error) {
	var stats Statistics
	query := `
    SELECT
      COUNT(1),
      COUNT(1) FILTER (WHERE status = 'pending'),
      COUNT(1) FILTER (WHERE status = 'approved'),
      COUNT(1) FILTER (WHERE status = 'rejected')
    FROM leave_requests`
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	if err := db.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected); err != nil {
		return stats, err
	}

	typeQuery := "SELECT type, COUNT(1), COALESCE(SUM(days),0) FROM leave_requests"
	if employeeID != "" {
		typeQuery += " WHERE employee_id = $1"
	}
	typeQuery += " GROUP BY type ORDER BY type"

	rows, err := db.Query(ctx, typeQuery, args...)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var breakdown TypeBreakdown
		if err := rows.Scan(&breakdown.Type, &breakdown.Count, &breakdown.Days); err != nil {
			return stats, err
		}
		stats.ByType = append(stats.ByType, breakdown)
	}
	return stats, rows.Err()
}
