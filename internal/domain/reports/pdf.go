package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

func buildPDF(report MonthlyReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", report.EmployeeName, report.EmployeeCode))
	pdf.Ln(6)
	if report.Department != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Department: %s", report.Department))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02")))
	pdf.Ln(10)

	widths := []float64{24, 24, 24, 24, 26, 26}
	headers := []string{"Date", "In", "Out", "Break", "Hours", "Status"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range report.Rows {
		cells := []string{
			r.Day.Format("2006-01-02"),
			formatClock(r.CheckIn),
			formatClock(r.CheckOut),
			fmt.Sprintf("%dm", r.BreakMinutes),
			formatHours(r.TotalHours),
			r.Status,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Present: %d  Late: %d  Half days: %d  Absent: %d  On leave: %d",
		report.Summary.DaysPresent, report.Summary.DaysLate, report.Summary.HalfDays,
		report.Summary.DaysAbsent, report.Summary.DaysOnLeave))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total hours: %s  Break minutes: %d",
		report.Summary.TotalHours.String(), report.Summary.BreakMinutes))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func formatHours(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
