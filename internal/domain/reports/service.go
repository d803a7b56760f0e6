package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"workforce/internal/domain/attendance"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Monthly assembles one employee's attendance report for the given calendar
// month.
func (s *Service) Monthly(ctx context.Context, employeeID string, year int, month time.Month) (MonthlyReport, error) {
	header, err := s.Store.employee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MonthlyReport{}, ErrEmployeeNotFound
		}
		return MonthlyReport{}, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	rows, err := s.Store.attendanceRows(ctx, header.ID, from, to)
	if err != nil {
		return MonthlyReport{}, err
	}

	report := MonthlyReport{
		EmployeeID:   header.ID,
		EmployeeCode: header.Code,
		EmployeeName: header.FirstName + " " + header.LastName,
		Department:   header.Department,
		From:         from,
		To:           to,
		Rows:         rows,
	}
	report.Summary = summarize(rows)
	return report, nil
}

func summarize(rows []Row) Summary {
	var s Summary
	s.TotalHours = decimal.Zero
	for _, r := range rows {
		switch r.Status {
		case attendance.StatusPresent:
			s.DaysPresent++
		case attendance.StatusLate:
			s.DaysLate++
		case attendance.StatusHalfDay:
			s.HalfDays++
		case attendance.StatusAbsent:
			s.DaysAbsent++
		case attendance.StatusOnLeave:
			s.DaysOnLeave++
		}
		if r.TotalHours != nil {
			s.TotalHours = s.TotalHours.Add(*r.TotalHours)
		}
		s.BreakMinutes += r.BreakMinutes
	}
	return s
}

// ExportExcel renders the monthly report as an xlsx workbook.
func (s *Service) ExportExcel(ctx context.Context, employeeID string, year int, month time.Month) ([]byte, error) {
	report, err := s.Monthly(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(report)
}

// ExportPDF renders the monthly report as a PDF summary sheet.
func (s *Service) ExportPDF(ctx context.Context, employeeID string, year int, month time.Month) ([]byte, error) {
	report, err := s.Monthly(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	return buildPDF(report)
}
