package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"workforce/internal/domain/attendance"
)

func sampleReport() MonthlyReport {
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(13 * time.Hour)
	checkOut := day.Add(21 * time.Hour)
	eight := decimal.NewFromInt(8)
	three := decimal.NewFromFloat(3.5)

	rows := []Row{
		{Day: day, CheckIn: &checkIn, CheckOut: &checkOut, BreakMinutes: 45, TotalHours: &eight, Status: attendance.StatusPresent},
		{Day: day.AddDate(0, 0, 1), CheckIn: &checkIn, CheckOut: &checkOut, BreakMinutes: 30, TotalHours: &three, Status: attendance.StatusHalfDay},
		{Day: day.AddDate(0, 0, 2), Status: attendance.StatusOnLeave},
		{Day: day.AddDate(0, 0, 3), Status: attendance.StatusAbsent},
	}
	report := MonthlyReport{
		EmployeeID:   "0b2e9f2e-0000-0000-0000-000000000001",
		EmployeeCode: "EMP0001",
		EmployeeName: "Avery Brooks",
		Department:   "Engineering",
		From:         time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		Rows:         rows,
	}
	report.Summary = summarize(rows)
	return report
}

func TestSummarize(t *testing.T) {
	s := sampleReport().Summary
	if s.DaysPresent != 1 || s.HalfDays != 1 || s.DaysOnLeave != 1 || s.DaysAbsent != 1 || s.DaysLate != 0 {
		t.Fatalf("summary counts = %+v", s)
	}
	if !s.TotalHours.Equal(decimal.NewFromFloat(11.5)) {
		t.Fatalf("total hours = %s, want 11.5", s.TotalHours)
	}
	if s.BreakMinutes != 75 {
		t.Fatalf("break minutes = %d, want 75", s.BreakMinutes)
	}
}

func TestBuildWorkbook(t *testing.T) {
	data, err := buildWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	// xlsx files are zip archives.
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("workbook output does not look like an xlsx file (%d bytes)", len(data))
	}
}

func TestBuildPDF(t *testing.T) {
	data, err := buildPDF(sampleReport())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf output missing header (%d bytes)", len(data))
	}
}
