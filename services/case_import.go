package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"case_law_app_go/models"

	"github.com/xuri/excelize/v2"
)

const (
	casesSheetName        = "Cases"
	instructionsSheetName = "Instructions"
	// MaxImportRows bounds a single workbook import
	MaxImportRows = 1000
)

// caseColumns is the column order shared by export, template and import
var caseColumns = []string{
	"Title*", "Court*", "Date*", "Jurisdiction", "Act", "Section",
	"Status", "Citations", "Summary", "Full Text",
}

// ImportResult contains the summary of the import process
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	FailedCount    int      `json:"failed_count"`
	Errors         []string `json:"errors"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeHeader(f *excelize.File, sheet string) error {
	for i, h := range caseColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	last, _ := excelize.CoordinatesToCellName(len(caseColumns), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)
	f.SetColWidth(sheet, "A", "A", 50)
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "I", "J", 60)
	return nil
}

func caseRow(c models.Case) []interface{} {
	return []interface{}{
		c.Title, c.Court, c.Date,
		deref(c.Jurisdiction), deref(c.ActName), deref(c.Section),
		c.Status, strings.Join(c.Citations, ", "),
		deref(c.Summary), deref(c.FullText),
	}
}

// ExportCasesXLSX writes cases to a single-sheet workbook in list order
func ExportCasesXLSX(cases []models.Case) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", casesSheetName)
	if err := writeHeader(f, casesSheetName); err != nil {
		return nil, err
	}

	for i, c := range cases {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := caseRow(c)
		if err := f.SetSheetRow(casesSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// GenerateImportTemplate builds the workbook admins fill in for bulk import
func GenerateImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", instructionsSheetName)
	instructions := []string{
		"Case import",
		"",
		"- Fill one case per row in the Cases sheet. Do not rename the sheet or reorder columns.",
		"- Columns marked with * are required.",
		"- Date must be written as YYYY-MM-DD.",
		fmt.Sprintf("- Status is one of %s. Anything else is stored as %s.",
			strings.Join(models.CaseStatuses(), ", "), models.CaseStatusRecent),
		"- Citations are separated by commas.",
		fmt.Sprintf("- At most %d rows are imported per file.", MaxImportRows),
	}
	for i, line := range instructions {
		f.SetCellValue(instructionsSheetName, fmt.Sprintf("A%d", i+1), line)
	}
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(instructionsSheetName, "A1", "A1", titleStyle)
	f.SetColWidth(instructionsSheetName, "A", "A", 90)

	if _, err := f.NewSheet(casesSheetName); err != nil {
		return nil, fmt.Errorf("failed to create cases sheet: %w", err)
	}
	if err := writeHeader(f, casesSheetName); err != nil {
		return nil, err
	}

	statusCol, _ := excelize.ColumnNumberToName(slices.Index(caseColumns, "Status") + 1)
	statusList := excelize.NewDataValidation(true)
	statusList.Sqref = fmt.Sprintf("%s2:%s%d", statusCol, statusCol, MaxImportRows+1)
	if err := statusList.SetDropList(models.CaseStatuses()); err != nil {
		return nil, err
	}
	if err := f.AddDataValidation(casesSheetName, statusList); err != nil {
		return nil, fmt.Errorf("failed to add status list: %w", err)
	}

	example := caseRow(models.Case{
		Title:     "Maneka Gandhi v. Union of India",
		Court:     "Supreme Court of India",
		Date:      "1978-01-25",
		Status:    models.CaseStatusLandmark,
		Citations: models.StringList{"AIR 1978 SC 597", "(1978) 1 SCC 248"},
	})
	if err := f.SetSheetRow(casesSheetName, "A2", &example); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func formFromRow(row []string) models.CaseFormData {
	return models.CaseFormData{
		Title:        cellAt(row, 0),
		Court:        cellAt(row, 1),
		Date:         cellAt(row, 2),
		Jurisdiction: cellAt(row, 3),
		ActName:      cellAt(row, 4),
		Section:      cellAt(row, 5),
		Status:       cellAt(row, 6),
		Citations:    cellAt(row, 7),
		Summary:      cellAt(row, 8),
		FullText:     cellAt(row, 9),
	}
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportCasesXLSX creates one case per non-blank row of the Cases sheet.
// Rows fail independently; the result lists every failed row.
func ImportCasesXLSX(ctx context.Context, mutations *CaseMutationService, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(casesSheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("invalid excel format: missing %q sheet", casesSheetName)
	}

	rows, err := f.GetRows(casesSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases sheet: %w", err)
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		if result.TotalProcessed >= MaxImportRows {
			result.Errors = append(result.Errors, fmt.Sprintf("Rows after %d were skipped (limit %d)", i, MaxImportRows))
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.TotalProcessed++
		if _, err := mutations.CreateCase(ctx, formFromRow(row)); err != nil {
			result.FailedCount++
			var verr *ValidationError
			if errors.As(err, &verr) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, verr.Error()))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to save case: %v", i+1, err))
			}
			continue
		}
		result.SuccessCount++
	}

	log.Printf("[CASES] Import finished: %d processed, %d created, %d failed",
		result.TotalProcessed, result.SuccessCount, result.FailedCount)
	return result, nil
}
