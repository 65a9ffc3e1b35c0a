package task

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "업무 목록"

var exportHeaders = []string{
	"ID", "제목", "상태", "우선순위", "난이도", "담당자", "보고자", "부서",
	"시작일", "마감일", "완료일", "예상 시간", "실제 시간", "지연 여부",
}

// ExportXLSX writes tasks to a single-sheet workbook with a styled header row.
func ExportXLSX(tasks []*Task) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1976D2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cellName, h); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(exportSheet, "B", "B", 40)
	_ = f.SetColWidth(exportSheet, "I", "K", 18)

	for r, t := range tasks {
		row := []interface{}{
			t.ID, t.Title, t.Status, t.Priority, t.Difficulty,
			displayName(t.AssigneeFullName, t.AssigneeName), t.ReporterName, t.DepartmentName,
			formatDate(t.StartDate), formatDate(t.DueDate), formatDate(t.CompletedAt),
			hours(t.EstimatedHours.Valid, t.EstimatedHours.Decimal.String()),
			hours(t.ActualHours.Valid, t.ActualHours.Decimal.String()),
			yesNo(t.IsDelayed),
		}
		cellName, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cellName, &row); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func ExportFilename(now time.Time) string {
	return fmt.Sprintf("tasks_%s.xlsx", now.Format("20060102"))
}

func displayName(fullName, username string) string {
	if fullName != "" {
		return fullName
	}
	return username
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func hours(valid bool, v string) string {
	if !valid {
		return ""
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
