package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const codePrefix = "EMP"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateInput struct {
	UserID     string
	Code       string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Department string
	Position   string
	Birthday   *time.Time
	JoinDate   time.Time
}

// Create persists the employee and seeds their bucket balances in one
// transaction, so an employee row never exists without a balance row.
func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	if err := validateCreate(in); err != nil {
		return Employee{}, err
	}

	var created Employee
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		code := strings.TrimSpace(in.Code)
		if code == "" {
			var err error
			code, err = s.Store.NextCode(ctx, tx, codePrefix)
			if err != nil {
				return err
			}
		}

		var err error
		created, err = s.Store.Insert(ctx, tx, Employee{
			UserID:     in.UserID,
			Code:       code,
			FirstName:  strings.TrimSpace(in.FirstName),
			LastName:   strings.TrimSpace(in.LastName),
			Email:      strings.ToLower(strings.TrimSpace(in.Email)),
			Phone:      in.Phone,
			Department: in.Department,
			Position:   in.Position,
			Birthday:   in.Birthday,
			JoinDate:   in.JoinDate,
		})
		if err != nil {
			return mapUniqueViolation(err)
		}
		return s.Store.SeedBalances(ctx, tx, created.ID, StandardGrants)
	})
	if err != nil {
		return Employee{}, err
	}
	return created, nil
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.FirstName) == "" {
		return &ValidationError{Field: "firstName", Reason: "required"}
	}
	if strings.TrimSpace(in.LastName) == "" {
		return &ValidationError{Field: "lastName", Reason: "required"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if in.JoinDate.IsZero() {
		return &ValidationError{Field: "joinDate", Reason: "required"}
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "code") {
			return ErrDuplicateCode
		}
		return ErrDuplicateMail
	}
	return err
}

// Resolve accepts either an employee UUID or an employee code and returns
// the matching record.
func (s *Service) Resolve(ctx context.Context, idOrCode string) (Employee, error) {
	var (
		e   Employee
		err error
	)
	if _, parseErr := uuid.Parse(idOrCode); parseErr == nil {
		e, err = s.Store.GetByID(ctx, s.Store.Pool, idOrCode)
	} else {
		e, err = s.Store.GetByCode(ctx, s.Store.Pool, idOrCode)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	e, err := s.Store.GetByUserID(ctx, s.Store.Pool, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Employee, error) {
	return s.Store.List(ctx, s.Store.Pool, filter)
}

type UpdateInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Department string
	Position   string
	Birthday   *time.Time
	JoinDate   time.Time
	LeaveDate  *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Employee, error) {
	current, err := s.Resolve(ctx, id)
	if err != nil {
		return Employee{}, err
	}

	next := current
	if strings.TrimSpace(in.FirstName) != "" {
		next.FirstName = strings.TrimSpace(in.FirstName)
	}
	if strings.TrimSpace(in.LastName) != "" {
		next.LastName = strings.TrimSpace(in.LastName)
	}
	if strings.TrimSpace(in.Email) != "" {
		next.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.Phone != "" {
		next.Phone = in.Phone
	}
	if in.Department != "" {
		next.Department = in.Department
	}
	if in.Position != "" {
		next.Position = in.Position
	}
	if in.Birthday != nil {
		next.Birthday = in.Birthday
	}
	if !in.JoinDate.IsZero() {
		next.JoinDate = in.JoinDate
	}
	if in.LeaveDate != nil {
		next.LeaveDate = in.LeaveDate
	}

	updated, err := s.Store.Update(ctx, s.Store.Pool, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, mapUniqueViolation(err)
	}
	return updated, nil
}

// Delete removes the employee; balances, requests, attendance and breaks
// cascade with the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, s.Store.Pool, e.ID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Store.Count(ctx, s.Store.Pool)
}

func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin employee tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("employee tx rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
