package employee

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/platform/querier"
)

const employeeColumns = `
    id, COALESCE(user_id::text,''), code, first_name, last_name, email,
    COALESCE(phone,''), COALESCE(department,''), COALESCE(position,''),
    birthday, join_date, leave_date, created_at, updated_at`

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

func scanEmployee(row rowScanner) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.Code, &e.FirstName, &e.LastName, &e.Email,
		&e.Phone, &e.Department, &e.Position, &e.Birthday, &e.JoinDate,
		&e.LeaveDate, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (s *Store) Insert(ctx context.Context, db querier.Querier, e Employee) (Employee, error) {
	row := db.QueryRow(ctx, `
    INSERT INTO employees
      (user_id, code, first_name, last_name, email, phone, department, position, birthday, join_date)
    VALUES (NULLIF($1,'')::uuid, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9, $10)
    RETURNING `+employeeColumns,
		e.UserID, e.Code, e.FirstName, e.LastName, e.Email,
		e.Phone, e.Department, e.Position, e.Birthday, e.JoinDate)
	return scanEmployee(row)
}

// SeedBalances creates the employee's bucket row with the standard grants.
func (s *Store) SeedBalances(ctx context.Context, db querier.Querier, employeeID string, grants DefaultGrants) error {
	_, err := db.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, casual, sick, earned, maternity, paternity, bereavement)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, employeeID, grants.Casual, grants.Sick, grants.Earned,
		grants.Maternity, grants.Paternity, grants.Bereavement)
	return err
}

func (s *Store) GetByID(ctx context.Context, db querier.Querier, id string) (Employee, error) {
	row := db.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE id = $1", id)
	return scanEmployee(row)
}

func (s *Store) GetByCode(ctx context.Context, db querier.Querier, code string) (Employee, error) {
	row := db.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE code = $1", code)
	return scanEmployee(row)
}

func (s *Store) GetByUserID(ctx context.Context, db querier.Querier, userID string) (Employee, error) {
	row := db.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE user_id = $1", userID)
	return scanEmployee(row)
}

type Filter struct {
	Department string
	Search     string
	Active     bool
}

func (s *Store) List(ctx context.Context, db querier.Querier, filter Filter) ([]Employee, error) {
	query := "SELECT" + employeeColumns + " FROM employees WHERE 1=1"
	var args []any
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR code ILIKE $%d OR email ILIKE $%d)", n, n, n, n)
	}
	if filter.Active {
		query += " AND leave_date IS NULL"
	}
	query += " ORDER BY code"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ListWithBirthdays returns every active employee whose birthday is on
// record, the input set for the birthday views.
func (s *Store) ListWithBirthdays(ctx context.Context, db querier.Querier) ([]Employee, error) {
	rows, err := db.Query(ctx, "SELECT"+employeeColumns+` FROM employees
    WHERE birthday IS NOT NULL AND leave_date IS NULL
    ORDER BY first_name, last_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) Update(ctx context.Context, db querier.Querier, e Employee) (Employee, error) {
	row := db.QueryRow(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, email = $4,
        phone = NULLIF($5,''), department = NULLIF($6,''), position = NULLIF($7,''),
        birthday = $8, join_date = $9, leave_date = $10, updated_at = now()
    WHERE id = $1
    RETURNING `+employeeColumns,
		e.ID, e.FirstName, e.LastName, e.Email, e.Phone, e.Department,
		e.Position, e.Birthday, e.JoinDate, e.LeaveDate)
	return scanEmployee(row)
}

func (s *Store) Delete(ctx context.Context, db querier.Querier, id string) error {
	tag, err := db.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context, db querier.Querier) (int, error) {
	var count int
	err := db.QueryRow(ctx, "SELECT COUNT(1) FROM employees").Scan(&count)
	return count, err
}

// NextCode allocates the next sequential employee code for the given prefix,
// e.g. EMP0007.
func (s *Store) NextCode(ctx context.Context, db querier.Querier, prefix string) (string, error) {
	var max int
	err := db.QueryRow(ctx, `
    SELECT COALESCE(MAX(NULLIF(regexp_replace(code, '\D', '', 'g'), '')::int), 0)
    FROM employees
    WHERE code LIKE $1 || '%'
  `, prefix).Scan(&max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}
