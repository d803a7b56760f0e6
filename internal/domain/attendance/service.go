package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service drives the clock and break lifecycle. The unique
// (employee_id, day) constraint is the safety net for clock-in races; every
// other mutation locks the employee-day row first.
type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// ClockIn opens the employee's day. The insert is a single atomic statement:
// when two submits race, exactly one wins the (employee_id, day) slot and
// the other gets ErrAlreadyClockedIn.
func (s *Service) ClockIn(ctx context.Context, employeeID string, at time.Time, location, notes string) (Record, error) {
	if strings.TrimSpace(employeeID) == "" {
		return Record{}, &ValidationError{Field: "employeeId", Reason: "required"}
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	record, err := s.Store.InsertCheckIn(ctx, s.Store.Pool, employeeID, DayOf(at), at, StatusAt(at), location, notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrAlreadyClockedIn
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Record{}, ErrAlreadyClockedIn
			case "23503":
				return Record{}, ErrEmployeeNotFound
			}
		}
		return Record{}, err
	}
	return record, nil
}

// ClockOut closes the day: it locks the day row, folds completed break time
// into the total and downgrades the status to half_day when the total falls
// under the threshold.
func (s *Service) ClockOut(ctx context.Context, employeeID string, at time.Time, location, notes string) (Record, error) {
	if strings.TrimSpace(employeeID) == "" {
		return Record{}, &ValidationError{Field: "employeeId", Reason: "required"}
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	day := DayOf(at)

	var closed Record
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		record, err := s.Store.GetDayForUpdate(ctx, tx, employeeID, day)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoActiveClockIn
			}
			return err
		}
		if record.CheckIn == nil {
			return ErrNoActiveClockIn
		}
		if record.CheckOut != nil {
			return ErrAlreadyOut
		}

		breakMinutes, err := s.Store.CompletedBreakMinutes(ctx, tx, employeeID, day)
		if err != nil {
			return err
		}
		total := WorkedHours(*record.CheckIn, at, breakMinutes)
		closed, err = s.Store.CloseDay(ctx, tx, record.ID, at, total, closedDayStatus(*record.CheckIn, total), location, notes)
		return err
	})
	return closed, err
}

// StartBreak opens a break on the employee's open day. The partial unique
// index on active breaks turns a racing second start into ErrBreakActive.
func (s *Service) StartBreak(ctx context.Context, employeeID string, at time.Time, reason string) (Break, error) {
	if strings.TrimSpace(employeeID) == "" {
		return Break{}, &ValidationError{Field: "employeeId", Reason: "required"}
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	day := DayOf(at)

	var started Break
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		record, err := s.Store.GetDayForUpdate(ctx, tx, employeeID, day)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoActiveClockIn
			}
			return err
		}
		if record.CheckIn == nil || record.CheckOut != nil {
			return ErrNoActiveClockIn
		}

		started, err = s.Store.InsertBreak(ctx, tx, employeeID, day, at, reason)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrBreakActive
		}
		return err
	})
	return started, err
}

// EndBreak completes a break and, when the day is already closed, reruns the
// total-hours computation so the finished break is reflected.
func (s *Service) EndBreak(ctx context.Context, employeeID, breakID string, at time.Time) (Break, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var ended Break
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		br, err := s.Store.GetBreakForUpdate(ctx, tx, breakID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoActiveBreak
			}
			return err
		}
		if br.EmployeeID != employeeID || br.Status != BreakActive {
			return ErrNoActiveBreak
		}

		ended, err = s.Store.CompleteBreak(ctx, tx, br.ID, at, BreakDuration(br.StartTime, at))
		if err != nil {
			return err
		}

		record, err := s.Store.GetDayForUpdate(ctx, tx, employeeID, br.Day)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if record.CheckIn == nil || record.CheckOut == nil {
			return nil
		}
		breakMinutes, err := s.Store.CompletedBreakMinutes(ctx, tx, employeeID, br.Day)
		if err != nil {
			return err
		}
		total := WorkedHours(*record.CheckIn, *record.CheckOut, breakMinutes)
		return s.Store.UpdateTotals(ctx, tx, record.ID, total, closedDayStatus(*record.CheckIn, total))
	})
	return ended, err
}

// Today returns the live snapshot of the employee's current day.
func (s *Service) Today(ctx context.Context, employeeID string, now time.Time) (TodaySnapshot, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	day := DayOf(now)

	var snapshot TodaySnapshot
	record, err := s.Store.GetDay(ctx, s.Store.Pool, employeeID, day)
	switch {
	case err == nil:
		snapshot.Record = &record
	case errors.Is(err, pgx.ErrNoRows):
		return snapshot, nil
	default:
		return snapshot, err
	}

	active, err := s.Store.ActiveBreak(ctx, s.Store.Pool, employeeID, day)
	if err == nil {
		snapshot.ActiveBreak = &active
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return snapshot, err
	}

	snapshot.BreakMinutes, err = s.Store.CompletedBreakMinutes(ctx, s.Store.Pool, employeeID, day)
	return snapshot, err
}

func (s *Service) List(ctx context.Context, filter RecordFilter) ([]Record, error) {
	return s.Store.ListRecords(ctx, s.Store.Pool, filter)
}

func (s *Service) ListBreaks(ctx context.Context, employeeID string, day time.Time) ([]Break, error) {
	return s.Store.ListBreaks(ctx, s.Store.Pool, employeeID, DayOf(day))
}

// Mark sets an admin-assigned status (absent, on_leave, ...) for one
// employee-day.
func (s *Service) Mark(ctx context.Context, employeeID string, day time.Time, status, notes string) (Record, error) {
	if !KnownStatus(status) {
		return Record{}, &ValidationError{Field: "status", Reason: "unknown attendance status"}
	}
	record, err := s.Store.MarkDay(ctx, s.Store.Pool, employeeID, DayOf(day), status, notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Record{}, ErrEmployeeNotFound
		}
		return Record{}, err
	}
	return record, nil
}

type MarkInput struct {
	EmployeeID string
	Day        time.Time
	Status     string
	Notes      string
}

// BulkMark applies a batch of admin marks in one transaction; any bad entry
// rolls back the whole batch.
func (s *Service) BulkMark(ctx context.Context, marks []MarkInput) ([]Record, error) {
	records := make([]Record, 0, len(marks))
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, m := range marks {
			if !KnownStatus(m.Status) {
				return &ValidationError{Field: "status", Reason: "unknown attendance status"}
			}
			record, err := s.Store.MarkDay(ctx, tx, m.EmployeeID, DayOf(m.Day), m.Status, m.Notes)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return ErrEmployeeNotFound
				}
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteRecord(ctx, s.Store.Pool, id)
}

func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("attendance tx rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
