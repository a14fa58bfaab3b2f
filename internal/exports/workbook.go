package exports

import (
	"bytes"
	"fmt"
	"time"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/xuri/excelize/v2"
)

const (
	applicantsSheet = "Applicants"
	dateLayout      = "2006-01-02"
)

// WorkbookFileName names the digest attachment.
func WorkbookFileName(at time.Time) string {
	return fmt.Sprintf("applicants-%s.xlsx", at.UTC().Format(dateLayout))
}

var workbookHeader = []any{
	"Name", "Email", "Phone", "Source", "Status",
	"App score", "Video score", "Final score", "Decision",
	"Applied", "Decided",
}

// ApplicantsWorkbook writes one row per applicant to a single-sheet workbook.
func ApplicantsWorkbook(applicants []hiring.Applicant) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), applicantsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(applicantsSheet, "A1", &workbookHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(applicantsSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, a := range applicants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := applicantRow(a)
		if err := f.SetSheetRow(applicantsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(applicantsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func applicantRow(a hiring.Applicant) []any {
	row := []any{
		a.Name, a.Email, a.Phone, a.Source.Label(), string(a.Status),
		scoreCell(a.AppScore), scoreCell(a.VideoScore), intCell(a.FinalComposite), "",
		a.AppliedAt.UTC().Format(dateLayout), "",
	}
	if a.Decision != nil {
		row[8] = string(*a.Decision)
	}
	if a.DecisionAt != nil {
		row[10] = a.DecisionAt.UTC().Format(dateLayout)
	}
	return row
}

func scoreCell(s *hiring.Score) any {
	if s == nil {
		return ""
	}
	return s.Composite
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
