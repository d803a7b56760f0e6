package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"workforce/internal/platform/cache"
)

const maxTxAttempts = 3

// Service drives the leave request lifecycle. All balance-affecting
// operations run inside one transaction that first locks the employee's
// balance row, so concurrent requests for the same employee are serialized.
type Service struct {
	Store    *Store
	Cache    cache.Cache
	CacheTTL time.Duration
}

func NewService(store *Store, c cache.Cache, cacheTTL time.Duration) *Service {
	if c == nil {
		c = cache.Disabled{}
	}
	return &Service{Store: store, Cache: c, CacheTTL: cacheTTL}
}

type CreateInput struct {
	EmployeeID         string
	Type               string
	From               time.Time
	To                 time.Time
	IsHalfDay          bool
	Reason             string
	ContactDuringLeave string
	AddressDuringLeave string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	if err := validateCreate(in); err != nil {
		return Request{}, err
	}

	from := MidnightUTC(in.From)
	to := from
	if !in.IsHalfDay && !in.To.IsZero() {
		to = MidnightUTC(in.To)
	}
	if to.Before(from) {
		return Request{}, &ValidationError{Field: "to", Reason: "must be on or after from"}
	}
	days := RequestDays(from, to, in.IsHalfDay)

	var created Request
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		balances, err := s.Store.LockBalances(ctx, tx, in.EmployeeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrEmployeeNotFound
			}
			return err
		}

		overlap, err := s.Store.HasOverlap(ctx, tx, in.EmployeeID, from, to)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		isPaid := false
		paidDays := decimal.Zero
		if DrawsOnPool(in.Type) {
			if in.Type == TypePaid {
				available, err := s.availableCredits(ctx, tx, in.EmployeeID)
				if err != nil {
					return err
				}
				paidDays = PaidCoverage(available, days)
				if paidDays.IsZero() {
					return &InsufficientBalanceError{Bucket: "paid", Available: available, Requested: days}
				}
				isPaid = true
			}
		} else {
			bucket := BucketFor(in.Type)
			current := balances.Get(bucket)
			if current.LessThan(days) {
				return &InsufficientBalanceError{Bucket: bucket, Available: current, Requested: days}
			}
			// Bucket leave is paid leave; deduction happens at approval.
			isPaid = true
			paidDays = days
		}

		created, err = s.Store.InsertRequest(ctx, tx, Request{
			EmployeeID:         in.EmployeeID,
			Type:               in.Type,
			From:               from,
			To:                 to,
			Days:               days,
			IsHalfDay:          in.IsHalfDay,
			IsPaid:             isPaid,
			PaidDays:           paidDays,
			Status:             StatusPending,
			Reason:             strings.TrimSpace(in.Reason),
			ContactDuringLeave: in.ContactDuringLeave,
			AddressDuringLeave: in.AddressDuringLeave,
		})
		return err
	})
	if err != nil {
		return Request{}, err
	}

	s.Cache.Invalidate(poolCacheKey(in.EmployeeID))
	return created, nil
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return &ValidationError{Field: "employeeId", Reason: "required"}
	}
	if in.Type == "" {
		return &ValidationError{Field: "type", Reason: "required"}
	}
	if !KnownType(in.Type) {
		return &ValidationError{Field: "type", Reason: "unknown leave type"}
	}
	if in.From.IsZero() {
		return &ValidationError{Field: "from", Reason: "required"}
	}
	if strings.TrimSpace(in.Reason) == "" {
		return &ValidationError{Field: "reason", Reason: "required"}
	}
	return nil
}

// SetStatus applies one lifecycle transition. Allowed transitions are
// pending->approved, pending->rejected and approved->rejected; the last one
// reverses the balance effect of the approval.
func (s *Service) SetStatus(ctx context.Context, id, status, approver, rejectionReason, managerNotes string) (Request, error) {
	if status != StatusApproved && status != StatusRejected {
		return Request{}, &ValidationError{Field: "status", Reason: "must be approved or rejected"}
	}

	var updated Request
	var employeeID string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		req, err := s.Store.GetRequestForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		employeeID = req.EmployeeID

		if !transitionAllowed(req.Status, status) {
			return ErrInvalidTransition
		}

		balances, err := s.Store.LockBalances(ctx, tx, req.EmployeeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrEmployeeNotFound
			}
			return err
		}

		if !DrawsOnPool(req.Type) {
			bucket := BucketFor(req.Type)
			switch {
			case status == StatusApproved:
				// Re-check against the freshly locked row: another approval
				// may have drained the bucket since creation.
				current := balances.Get(bucket)
				if current.LessThan(req.Days) {
					return &InsufficientBalanceError{Bucket: bucket, Available: current, Requested: req.Days}
				}
				if err := s.Store.AdjustBucket(ctx, tx, req.EmployeeID, bucket, req.Days.Neg()); err != nil {
					return err
				}
			case status == StatusRejected && req.Status == StatusApproved:
				if err := s.Store.AdjustBucket(ctx, tx, req.EmployeeID, bucket, req.Days); err != nil {
					return err
				}
			}
		}
		// Pool types need no stored mutation: the pool is derived from the
		// approved-request sum, so flipping the status is the mutation.

		var approvedBy string
		var approvedAt *time.Time
		var rejection string
		if status == StatusApproved {
			approvedBy = approver
			now := time.Now().UTC()
			approvedAt = &now
		} else {
			rejection = rejectionReason
		}

		updated, err = s.Store.UpdateRequestStatus(ctx, tx, id, status, approvedBy, rejection, managerNotes, approvedAt)
		return err
	})
	if err != nil {
		return Request{}, err
	}

	s.Cache.Invalidate(poolCacheKey(employeeID))
	return updated, nil
}

func transitionAllowed(current, next string) bool {
	switch {
	case current == StatusPending && next == StatusApproved:
		return true
	case current == StatusPending && next == StatusRejected:
		return true
	case current == StatusApproved && next == StatusRejected:
		return true
	default:
		return false
	}
}

// Delete removes a request. Deleting an approved bucket-type request
// restores the bucket before the row goes away; pool types need no explicit
// restoration because the approved-sum shrinks with the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	var employeeID string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		req, err := s.Store.GetRequestForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		employeeID = req.EmployeeID

		if req.Status == StatusApproved && !DrawsOnPool(req.Type) {
			if _, err := s.Store.LockBalances(ctx, tx, req.EmployeeID); err != nil {
				return err
			}
			if err := s.Store.AdjustBucket(ctx, tx, req.EmployeeID, BucketFor(req.Type), req.Days); err != nil {
				return err
			}
		}
		return s.Store.DeleteRequest(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.Cache.Invalidate(poolCacheKey(employeeID))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	req, err := s.Store.GetRequest(ctx, s.Store.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Service) List(ctx context.Context, filter RequestFilter) ([]Request, error) {
	return s.Store.ListRequests(ctx, s.Store.Pool, filter)
}

func (s *Service) Statistics(ctx context.Context, employeeID string) (Statistics, error) {
	return s.Store.Statistics(ctx, s.Store.Pool, employeeID)
}

func (s *Service) BucketBalances(ctx context.Context, employeeID string) (BucketBalances, error) {
	b, err := s.Store.GetBalances(ctx, s.Store.Pool, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return BucketBalances{}, ErrEmployeeNotFound
	}
	return b, err
}

// SetBucketBalances replaces the stored bucket row wholesale. Negative
// buckets are rejected; anything else is the admin's call.
func (s *Service) SetBucketBalances(ctx context.Context, b BucketBalances) (BucketBalances, error) {
	for _, bucket := range []string{"casual", "sick", "earned", "maternity", "paternity", "bereavement"} {
		if b.Get(bucket).IsNegative() {
			return BucketBalances{}, &ValidationError{Field: bucket, Reason: "must not be negative"}
		}
	}

	var updated BucketBalances
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.Store.LockBalances(ctx, tx, b.EmployeeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrEmployeeNotFound
			}
			return err
		}
		var err error
		updated, err = s.Store.SetBalances(ctx, tx, b)
		return err
	})
	if err != nil {
		return BucketBalances{}, err
	}

	s.Cache.Invalidate(poolCacheKey(b.EmployeeID))
	return updated, nil
}

// PoolBalance is the cached display read of the accrual pool. Mutating
// decisions never use it; they call availableCredits inside their own
// transaction.
func (s *Service) PoolBalance(ctx context.Context, employeeID string) (PoolBalance, error) {
	key := poolCacheKey(employeeID)
	if v, ok := s.Cache.Get(key); ok {
		if balance, ok := v.(PoolBalance); ok {
			return balance, nil
		}
	}

	joinDate, err := s.Store.JoinDate(ctx, s.Store.Pool, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PoolBalance{}, ErrEmployeeNotFound
		}
		return PoolBalance{}, err
	}
	consumed, err := s.Store.ConsumedPaidDays(ctx, s.Store.Pool, employeeID)
	if err != nil {
		return PoolBalance{}, err
	}
	pending, err := s.Store.PendingPaidDays(ctx, s.Store.Pool, employeeID)
	if err != nil {
		return PoolBalance{}, err
	}

	now := time.Now().UTC()
	earned := EarnedCredits(joinDate, now)
	available := decimal.NewFromInt(int64(earned)).Sub(consumed)
	if available.IsNegative() {
		available = decimal.Zero
	}

	balance := PoolBalance{
		Earned:         earned,
		Consumed:       consumed,
		Pending:        pending,
		Available:      available,
		NextCreditDate: NextCreditDate(joinDate, now),
	}
	s.Cache.Set(key, balance, s.CacheTTL)
	return balance, nil
}

// availableCredits is the fresh, in-transaction pool read used by every
// decision that commits a paid request.
func (s *Service) availableCredits(ctx context.Context, tx pgx.Tx, employeeID string) (decimal.Decimal, error) {
	joinDate, err := s.Store.JoinDate(ctx, tx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrEmployeeNotFound
		}
		return decimal.Zero, err
	}
	consumed, err := s.Store.ConsumedPaidDays(ctx, tx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	available := decimal.NewFromInt(int64(EarnedCredits(joinDate, time.Now().UTC()))).Sub(consumed)
	if available.IsNegative() {
		return decimal.Zero, nil
	}
	return available, nil
}

func poolCacheKey(employeeID string) string {
	return "paid_leave_" + employeeID
}

// inTx runs fn in a transaction, retrying a bounded number of times when the
// database reports a serialization conflict. Exhausting the retries surfaces
// ErrConcurrency so callers can distinguish it from business-rule failures.
func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		tx, err := s.Store.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin leave tx: %w", err)
		}

		err = fn(tx)
		if err == nil {
			if err = tx.Commit(ctx); err == nil {
				return nil
			}
		} else {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				slog.Warn("leave tx rollback failed", "err", rbErr)
			}
		}

		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrConcurrency, lastErr)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
