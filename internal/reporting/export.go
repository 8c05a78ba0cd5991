package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	SheetOverview       = "Overview"
	SheetQuestionnaires = "Questionnaires"
	SheetTopPerformers  = "Top Performers"
)

var (
	questionnaireHeaders = []interface{}{"Questionnaire", "Total", "Completed", "Pending", "In Progress", "Completion Rate (%)", "Average Score"}
	performerHeaders     = []interface{}{"Rank", "Evaluatee", "Evaluator", "Questionnaire", "Score", "Completed At"}
)

// ExportXLSX renders a report as a workbook
// The caller owns the returned file and must close it.
func ExportXLSX(report *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetQuestionnaires, SheetTopPerformers} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeOverview(f, report, headerStyle); err != nil {
		return nil, err
	}
	if err := writeQuestionnaires(f, report, headerStyle); err != nil {
		return nil, err
	}
	if err := writePerformers(f, report, headerStyle); err != nil {
		return nil, err
	}
	return f, nil
}

// ExportFilename returns the download name of an exported report
func ExportFilename(report *Report) string {
	return fmt.Sprintf("evaluation_report_%s_%s.xlsx", report.Range, report.GeneratedAt.Format("20060102"))
}

func writeOverview(f *excelize.File, report *Report, headerStyle int) error {
	o := report.Overview
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Range", string(report.Range)},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04")},
		{"Total Evaluations", o.TotalEvaluations},
		{"Completed", o.CompletedEvaluations},
		{"Pending", o.PendingEvaluations},
		{"In Progress", o.InProgressEvaluations},
		{"Cancelled", o.CancelledEvaluations},
		{"Average Score", o.AverageScore},
	}
	if err := writeRows(f, SheetOverview, rows); err != nil {
		return err
	}
	f.SetCellStyle(SheetOverview, "A1", "B1", headerStyle)
	f.SetColWidth(SheetOverview, "A", "A", 22)
	f.SetColWidth(SheetOverview, "B", "B", 18)
	return nil
}

func writeQuestionnaires(f *excelize.File, report *Report, headerStyle int) error {
	rows := [][]interface{}{questionnaireHeaders}
	for _, st := range report.Questionnaires {
		rows = append(rows, []interface{}{
			st.Title, st.Total, st.Completed, st.Pending, st.InProgress, st.CompletionRate, st.AverageScore,
		})
	}
	if err := writeRows(f, SheetQuestionnaires, rows); err != nil {
		return err
	}
	setHeader(f, SheetQuestionnaires, len(questionnaireHeaders), headerStyle)
	f.SetColWidth(SheetQuestionnaires, "A", "A", 32)
	f.SetColWidth(SheetQuestionnaires, "B", "G", 14)
	return nil
}

func writePerformers(f *excelize.File, report *Report, headerStyle int) error {
	rows := [][]interface{}{performerHeaders}
	for i, e := range report.TopPerformers {
		completed := ""
		if e.CompletedAt != nil {
			completed = e.CompletedAt.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			i + 1, e.EvaluateeID, e.EvaluatorID, e.QuestionnaireTitle, e.Score, completed,
		})
	}
	if err := writeRows(f, SheetTopPerformers, rows); err != nil {
		return err
	}
	setHeader(f, SheetTopPerformers, len(performerHeaders), headerStyle)
	f.SetColWidth(SheetTopPerformers, "A", "A", 6)
	f.SetColWidth(SheetTopPerformers, "B", "D", 24)
	f.SetColWidth(SheetTopPerformers, "E", "F", 14)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func setHeader(f *excelize.File, sheet string, columns, style int) {
	last, _ := excelize.ColumnNumberToName(columns)
	f.SetCellStyle(sheet, "A1", last+"1", style)
}
