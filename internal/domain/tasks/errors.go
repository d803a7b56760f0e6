package tasks

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("task submission not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrNotAssignee        = errors.New("employee is not assigned to this task")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
