package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

type employeeHeader struct {
	ID         string
	Code       string
	FirstName  string
	LastName   string
	Department string
}

func (s *Store) employee(ctx context.Context, employeeID string) (employeeHeader, error) {
	var h employeeHeader
	err := s.Pool.QueryRow(ctx, `
    SELECT id, code, first_name, last_name, COALESCE(department,'')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&h.ID, &h.Code, &h.FirstName, &h.LastName, &h.Department)
	return h, err
}

// attendanceRows joins each attendance day with its completed break total.
func (s *Store) attendanceRows(ctx context.Context, employeeID string, from, to time.Time) ([]Row, error) {
	rows, err := s.Pool.Query(ctx, `
    SELECT a.day, a.check_in, a.check_out, a.total_hours, a.status,
           COALESCE(b.minutes, 0)
    FROM attendance a
    LEFT JOIN (
      SELECT employee_id, day, SUM(duration_minutes) AS minutes
      FROM breaks
      WHERE status = 'completed'
      GROUP BY employee_id, day
    ) b ON b.employee_id = a.employee_id AND b.day = a.day
    WHERE a.employee_id = $1 AND a.day >= $2 AND a.day <= $3
    ORDER BY a.day
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Day, &r.CheckIn, &r.CheckOut, &r.TotalHours, &r.Status, &r.BreakMinutes); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
