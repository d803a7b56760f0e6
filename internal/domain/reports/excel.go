package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

func buildWorkbook(report MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	header := [][]any{
		{"Employee", report.EmployeeName},
		{"Code", report.EmployeeCode},
		{"Department", report.Department},
		{"Period", report.From.Format("2006-01-02") + " to " + report.To.Format("2006-01-02")},
	}
	for i, pair := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetName, cell, &pair); err != nil {
			return nil, err
		}
	}

	columns := []any{"Date", "Check In", "Check Out", "Break (min)", "Total Hours", "Status"}
	headerRow := len(header) + 2
	cell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(sheetName, cell, &columns); err != nil {
		return nil, err
	}

	for i, r := range report.Rows {
		row := []any{
			r.Day.Format("2006-01-02"),
			formatClock(r.CheckIn),
			formatClock(r.CheckOut),
			r.BreakMinutes,
			formatHours(r.TotalHours),
			r.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	summaryRow := headerRow + len(report.Rows) + 2
	summary := [][]any{
		{"Present", report.Summary.DaysPresent},
		{"Late", report.Summary.DaysLate},
		{"Half days", report.Summary.HalfDays},
		{"Absent", report.Summary.DaysAbsent},
		{"On leave", report.Summary.DaysOnLeave},
		{"Total hours", report.Summary.TotalHours.String()},
		{"Break minutes", report.Summary.BreakMinutes},
	}
	for i, pair := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err := f.SetSheetRow(sheetName, cell, &pair); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
