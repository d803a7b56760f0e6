package tasks

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

// Service drives task assignment and progress accounting. Progress changes
// lock the task row first, so concurrent submissions against the same task
// serialize and the achieved count never drifts.
type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateInput struct {
	Title       string
	Description string
	Type        string
	Category    string
	Target      int
	Unit        string
	Deadline    time.Time
	Priority    string
	AssignedTo  string
	AssignedBy  string
	Notes       string
	Recurring   bool
	Recurrence  string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	if err := validateCreate(in); err != nil {
		return Task{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	created, err := s.Store.Insert(ctx, s.Store.Pool, Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Target:      in.Target,
		Unit:        in.Unit,
		Deadline:    in.Deadline,
		Priority:    priority,
		Status:      StatusActive,
		AssignedTo:  in.AssignedTo,
		AssignedBy:  in.AssignedBy,
		Notes:       in.Notes,
		Recurring:   in.Recurring,
		Recurrence:  in.Recurrence,
	})
	if err != nil {
		return Task{}, mapForeignKey(err)
	}
	return created, nil
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !KnownType(in.Type) {
		return &ValidationError{Field: "type", Reason: "must be one of " + strings.Join(Types, ", ")}
	}
	if !KnownCategory(in.Category) {
		return &ValidationError{Field: "category", Reason: "must be one of " + strings.Join(Categories, ", ")}
	}
	if in.Target <= 0 {
		return &ValidationError{Field: "target", Reason: "must be positive"}
	}
	if strings.TrimSpace(in.Unit) == "" {
		return &ValidationError{Field: "unit", Reason: "required"}
	}
	if in.Deadline.IsZero() {
		return &ValidationError{Field: "deadline", Reason: "required"}
	}
	if in.Priority != "" && !KnownPriority(in.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be one of " + strings.Join(Priorities, ", ")}
	}
	if in.AssignedTo == "" {
		return &ValidationError{Field: "assignedTo", Reason: "required"}
	}
	if in.AssignedBy == "" {
		return &ValidationError{Field: "assignedBy", Reason: "required"}
	}
	return nil
}

func mapForeignKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrEmployeeNotFound
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	t, err := s.Store.Get(ctx, s.Store.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Task, error) {
	return s.Store.List(ctx, s.Store.Pool, filter)
}

type UpdateInput struct {
	Title       string
	Description string
	Type        string
	Category    string
	Target      int
	Unit        string
	Deadline    time.Time
	Priority    string
	Status      string
	AssignedTo  string
	Notes       string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Task, error) {
	var updated Task
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := s.Store.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		next := current
		if strings.TrimSpace(in.Title) != "" {
			next.Title = strings.TrimSpace(in.Title)
		}
		if in.Description != "" {
			next.Description = in.Description
		}
		if in.Type != "" {
			if !KnownType(in.Type) {
				return &ValidationError{Field: "type", Reason: "must be one of " + strings.Join(Types, ", ")}
			}
			next.Type = in.Type
		}
		if in.Category != "" {
			if !KnownCategory(in.Category) {
				return &ValidationError{Field: "category", Reason: "must be one of " + strings.Join(Categories, ", ")}
			}
			next.Category = in.Category
		}
		if in.Target > 0 {
			next.Target = in.Target
		}
		if in.Unit != "" {
			next.Unit = in.Unit
		}
		if !in.Deadline.IsZero() {
			next.Deadline = in.Deadline
		}
		if in.Priority != "" {
			if !KnownPriority(in.Priority) {
				return &ValidationError{Field: "priority", Reason: "must be one of " + strings.Join(Priorities, ", ")}
			}
			next.Priority = in.Priority
		}
		if in.Status != "" {
			if !KnownStatus(in.Status) {
				return &ValidationError{Field: "status", Reason: "must be one of " + strings.Join(Statuses, ", ")}
			}
			next.Status = in.Status
		}
		if in.AssignedTo != "" {
			next.AssignedTo = in.AssignedTo
		}
		if in.Notes != "" {
			next.Notes = in.Notes
		}

		// A target change can flip completion either way.
		if next.Achieved >= next.Target {
			next.Status = StatusCompleted
		} else if next.Status == StatusCompleted {
			next.Status = StatusActive
		}

		updated, err = s.Store.Update(ctx, tx, next)
		return mapForeignKey(err)
	})
	if err != nil {
		return Task{}, err
	}
	return updated, nil
}

// Delete removes the task; submissions cascade with the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, s.Store.Pool, id)
}

// Submit records progress from the task's assignee, then folds the count
// into the achieved total inside the same transaction.
func (s *Service) Submit(ctx context.Context, taskID, employeeID string, count int, notes string) (Submission, Task, error) {
	if count <= 0 {
		return Submission{}, Task{}, &ValidationError{Field: "count", Reason: "must be positive"}
	}

	var (
		sub  Submission
		task Task
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := s.Store.GetForUpdate(ctx, tx, taskID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if current.AssignedTo != employeeID {
			return ErrNotAssignee
		}

		sub, err = s.Store.InsertSubmission(ctx, tx, Submission{
			TaskID:     taskID,
			EmployeeID: employeeID,
			Count:      count,
			Notes:      notes,
		})
		if err != nil {
			return mapForeignKey(err)
		}

		achieved, status := ApplyProgress(current.Achieved, count, current.Target, current.Status)
		if err := s.Store.SetProgress(ctx, tx, taskID, achieved, status); err != nil {
			return err
		}
		task = current
		task.Achieved = achieved
		task.Status = status
		return nil
	})
	if err != nil {
		return Submission{}, Task{}, err
	}
	return sub, task, nil
}

func (s *Service) Submissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	return s.Store.ListSubmissions(ctx, s.Store.Pool, filter)
}

func (s *Service) Verify(ctx context.Context, submissionID, verifiedBy string) (Submission, error) {
	sub, err := s.Store.VerifySubmission(ctx, s.Store.Pool, submissionID, verifiedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, err
}

// DeleteSubmission removes a progress report and gives its count back to
// the task.
func (s *Service) DeleteSubmission(ctx context.Context, submissionID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		sub, err := s.Store.GetSubmission(ctx, tx, submissionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrSubmissionNotFound
			}
			return err
		}

		task, err := s.Store.GetForUpdate(ctx, tx, sub.TaskID)
		if err != nil {
			return err
		}
		if err := s.Store.DeleteSubmission(ctx, tx, submissionID); err != nil {
			return err
		}

		achieved, status := RemoveProgress(task.Achieved, sub.Count, task.Target, task.Status)
		return s.Store.SetProgress(ctx, tx, task.ID, achieved, status)
	})
}

// Analytics summarizes a task's submission history over an optional window.
func (s *Service) Analytics(ctx context.Context, taskID string, from, to time.Time) (Analytics, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return Analytics{}, err
	}

	subs, err := s.Store.ListSubmissions(ctx, s.Store.Pool, SubmissionFilter{
		TaskID: taskID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return Analytics{}, err
	}

	out := Analytics{
		Task:           task,
		Submissions:    subs,
		CompletionRate: CompletionRate(task.Achieved, task.Target),
	}
	for _, sub := range subs {
		out.TotalSubmitted += sub.Count
		if sub.Count > out.PeakCount {
			out.PeakCount = sub.Count
			at := sub.SubmittedAt
			out.PeakDate = &at
		}
	}
	if len(subs) > 0 {
		out.AvgDaily = float64(out.TotalSubmitted) / float64(len(subs))
	}
	return out, nil
}

// StatsFor aggregates the employee's assigned tasks and submissions.
func (s *Service) StatsFor(ctx context.Context, employeeID string) (EmployeeStats, error) {
	taskList, err := s.Store.List(ctx, s.Store.Pool, Filter{AssignedTo: employeeID})
	if err != nil {
		return EmployeeStats{}, err
	}

	stats := EmployeeStats{Total: len(taskList), Tasks: taskList}
	var totalTarget, totalAchieved int
	for _, t := range taskList {
		switch t.Status {
		case StatusActive:
			stats.Active++
		case StatusCompleted:
			stats.Completed++
		case StatusOverdue:
			stats.Overdue++
		}
		totalTarget += t.Target
		totalAchieved += t.Achieved
	}
	stats.CompletionRate = CompletionRate(totalAchieved, totalTarget)

	stats.TotalSubmissions, stats.VerifiedSubmissions, err = s.Store.CountSubmissions(ctx, s.Store.Pool, employeeID)
	if err != nil {
		return EmployeeStats{}, err
	}
	return stats, nil
}

func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tasks tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("tasks tx rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
