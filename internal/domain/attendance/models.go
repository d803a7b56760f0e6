package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusHalfDay = "half_day"
	StatusAbsent  = "absent"
	StatusOnLeave = "on_leave"
)

var Statuses = []string{
	StatusPresent, StatusLate, StatusHalfDay, StatusAbsent, StatusOnLeave,
}

const (
	BreakActive    = "active"
	BreakCompleted = "completed"
)

// Record is one employee-day of attendance. Day is the local calendar date
// stored as a UTC midnight; CheckIn and CheckOut are the real instants.
type Record struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Day        time.Time        `json:"day"`
	CheckIn    *time.Time       `json:"checkIn,omitempty"`
	CheckOut   *time.Time       `json:"checkOut,omitempty"`
	TotalHours *decimal.Decimal `json:"totalHours,omitempty"`
	Status     string           `json:"status"`
	Location   string           `json:"location,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type Break struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	Day             time.Time  `json:"day"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// TodaySnapshot is the employee's live view of the current day.
type TodaySnapshot struct {
	Record       *Record `json:"record"`
	ActiveBreak  *Break  `json:"activeBreak,omitempty"`
	BreakMinutes int     `json:"breakMinutes"`
}
