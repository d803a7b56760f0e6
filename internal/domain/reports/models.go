package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one attendance day flattened for export.
type Row struct {
	Day          time.Time        `json:"day"`
	CheckIn      *time.Time       `json:"checkIn,omitempty"`
	CheckOut     *time.Time       `json:"checkOut,omitempty"`
	BreakMinutes int              `json:"breakMinutes"`
	TotalHours   *decimal.Decimal `json:"totalHours,omitempty"`
	Status       string           `json:"status"`
}

type Summary struct {
	DaysPresent  int             `json:"daysPresent"`
	DaysLate     int             `json:"daysLate"`
	HalfDays     int             `json:"halfDays"`
	DaysAbsent   int             `json:"daysAbsent"`
	DaysOnLeave  int             `json:"daysOnLeave"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	BreakMinutes int             `json:"breakMinutes"`
}

// MonthlyReport is one employee's attendance month, ready for rendering.
type MonthlyReport struct {
	EmployeeID   string    `json:"employeeId"`
	EmployeeCode string    `json:"employeeCode"`
	EmployeeName string    `json:"employeeName"`
	Department   string    `json:"department,omitempty"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Rows         []Row     `json:"rows"`
	Summary      Summary   `json:"summary"`
}
