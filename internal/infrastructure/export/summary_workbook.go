// Package export renders financial summaries as spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
	"github.com/garyjia/timesheet-insights/internal/domain/finance"
)

// DefaultSheetName is used when no sheet name is configured
const DefaultSheetName = "Summaries"

var headers = []string{
	"Project ID", "Project", "Budget", "Actual Cost", "Actual Hours",
	"Profit/Loss", "Profit/Loss %", "Utilization %",
}

// SummaryWorkbook writes per-project summaries and the portfolio total to xlsx
type SummaryWorkbook struct {
	sheetName string
	logger    *zap.Logger
}

// NewSummaryWorkbook creates a workbook writer
func NewSummaryWorkbook(sheetName string, logger *zap.Logger) *SummaryWorkbook {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &SummaryWorkbook{sheetName: sheetName, logger: logger}
}

// Write renders one row per summary followed by a total row. All amounts are
// rounded to two decimals.
func (sw *SummaryWorkbook) Write(w io.Writer, summaries []entity.FinancialSummary, portfolio entity.FinancialSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sw.sheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	for i, h := range headers {
		if err := sw.setCell(f, i+1, 1, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, s := range summaries {
		if err := sw.writeRow(f, row, s.ProjectID, s); err != nil {
			return err
		}
		row++
	}

	if err := sw.writeRow(f, row, "", portfolio); err != nil {
		return err
	}

	if row > 2 {
		if err := f.SetCellStyle(sheet, "C2", cell(8, row-1), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(8, row), totalStyle); err != nil {
		return fmt.Errorf("failed to style total: %w", err)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "H", 16)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	sw.logger.Info("Summary workbook written", zap.Int("projects", len(summaries)))
	return nil
}

func (sw *SummaryWorkbook) writeRow(f *excelize.File, row int, id string, s entity.FinancialSummary) error {
	s = finance.RoundSummary(s)

	values := []interface{}{id, s.ProjectName, s.FixedCost, s.ActualCost, s.ActualHours, s.ProfitLoss, nil, nil}
	if s.HasBudget {
		values[6] = s.ProfitLossPct
		values[7] = s.UtilizationPct
	}

	for i, v := range values {
		if v == nil {
			continue
		}
		if err := sw.setCell(f, i+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

func (sw *SummaryWorkbook) setCell(f *excelize.File, col, row int, value interface{}) error {
	if err := f.SetCellValue(sw.sheetName, cell(col, row), value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell(col, row), err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
