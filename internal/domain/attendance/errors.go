package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("attendance record not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrNoActiveClockIn  = errors.New("no active clock-in for today")
	ErrAlreadyOut       = errors.New("already clocked out today")
	ErrBreakActive      = errors.New("a break is already active")
	ErrNoActiveBreak    = errors.New("no active break to end")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
