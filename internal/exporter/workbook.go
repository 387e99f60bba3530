package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"gmlcli/internal/consistency"
	"gmlcli/internal/liquidity"
)

// WorkbookInput collects everything one analysis run produced. Nil
// sections are omitted from the workbook.
type WorkbookInput struct {
	Report         *consistency.Report
	Cycles         *liquidity.CycleAnalysis
	Aggregates     *liquidity.AggregatesAnalysis
	CreditCreation *liquidity.CreditCreation
	BalanceSheets  *liquidity.BalanceSheetAnalysis
	Correlations   map[string]*liquidity.AssetCorrelation
}

// WorkbookExporter builds a multi-sheet Excel workbook for a full
// analysis run
type WorkbookExporter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter rooted at reportsDir
func NewWorkbookExporter(reportsDir string, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{reportsDir: reportsDir, logger: logger}
}

// WriteWorkbook writes the analysis workbook to filePath. Relative paths
// are rooted at the reports directory.
func (e *WorkbookExporter) WriteWorkbook(filePath string, input WorkbookInput) error {
	fullPath := NewCSVWriter(e.reportsDir).resolvePath(filePath)

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummarySheet(f, input); err != nil {
		return err
	}
	if input.Report != nil {
		if err := e.writeChecksSheet(f, input.Report); err != nil {
			return err
		}
	}
	if input.Aggregates != nil {
		if err := e.writeAggregatesSheet(f, input.Aggregates, input.CreditCreation); err != nil {
			return err
		}
	}
	if input.Cycles != nil {
		if err := e.writeCyclesSheet(f, input.Cycles); err != nil {
			return err
		}
	}
	if input.BalanceSheets != nil {
		if err := e.writeBalanceSheetsSheet(f, input.BalanceSheets); err != nil {
			return err
		}
	}
	if len(input.Correlations) > 0 {
		if err := e.writeCorrelationsSheet(f, input.Correlations); err != nil {
			return err
		}
	}

	// Sheet1 is excelize's mandatory default; drop it once real sheets exist
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	e.logger.Info("writing analysis workbook", slog.String("path", fullPath))
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (e *WorkbookExporter) writeSummarySheet(f *excelize.File, input WorkbookInput) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Generated", time.Now().Format(time.RFC3339)},
		{},
	}
	if input.Report != nil {
		s := input.Report.Summarize()
		rows = append(rows,
			[]interface{}{"Validation result", validity(s.IsValid)},
			[]interface{}{"Total checks", s.TotalChecks},
			[]interface{}{"Passed", s.TotalPassed},
			[]interface{}{"Warnings", s.TotalWarnings},
			[]interface{}{"Errors", s.TotalErrors},
			[]interface{}{"Skipped", s.TotalSkipped},
			[]interface{}{},
		)
	}
	if input.Cycles != nil {
		rows = append(rows,
			[]interface{}{"Current phase", input.Cycles.CurrentPhase.Phase},
			[]interface{}{"Cycles identified", len(input.Cycles.Cycles)},
		)
	}
	if input.Aggregates != nil {
		rows = append(rows, []interface{}{"Aggregates analyzed", len(input.Aggregates.Aggregates)})
	}
	if input.BalanceSheets != nil {
		rows = append(rows, []interface{}{"Central banks analyzed", input.BalanceSheets.Aggregate.BanksAnalyzed})
	}
	if len(input.Correlations) > 0 {
		rows = append(rows, []interface{}{"Asset classes correlated", len(input.Correlations)})
	}
	return writeRows(f, sheet, rows)
}

func (e *WorkbookExporter) writeChecksSheet(f *excelize.File, report *consistency.Report) error {
	const sheet = "Checks"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Check", "Status", "Message"}}
	for _, check := range report.Checks {
		rows = append(rows, []interface{}{check.CheckName, string(check.Status), check.Message})
	}
	return writeRows(f, sheet, rows)
}

func (e *WorkbookExporter) writeAggregatesSheet(f *excelize.File, analysis *liquidity.AggregatesAnalysis, credit *liquidity.CreditCreation) error {
	const sheet = "Aggregates"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	names := make([]string, 0, len(analysis.Aggregates))
	for name := range analysis.Aggregates {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]interface{}{{
		"Aggregate", "Current value", "YoY growth %", "MoM growth %",
		"Velocity", "Trend 6M %", "Data points",
	}}
	for _, name := range names {
		m := analysis.Aggregates[name]
		rows = append(rows, []interface{}{
			name, cell(m.CurrentValue), cell(m.CurrentYoYGrowth), cell(m.CurrentMoMGrowth),
			cell(m.CurrentVelocity), cell(m.RecentTrend6M), m.DataPoints,
		})
	}

	if credit != nil {
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Credit growth YoY %", cell(credit.CurrentCreditGrowth)},
			[]interface{}{"Credit creation 12M", cell(credit.CreditCreation12M)},
		)
		if credit.Multiplier != nil {
			rows = append(rows, []interface{}{"Money multiplier", cell(credit.Multiplier.Current)})
		}
	}
	return writeRows(f, sheet, rows)
}

func (e *WorkbookExporter) writeCyclesSheet(f *excelize.File, analysis *liquidity.CycleAnalysis) error {
	const sheet = "Cycles"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{
		"Cycle", "Start", "End", "Length (months)", "Peak", "Trough", "Amplitude %",
	}}
	for _, c := range analysis.Cycles {
		rows = append(rows, []interface{}{
			c.Number,
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			cell(c.LengthMonths), cell(c.PeakValue), cell(c.TroughValue), cell(c.Amplitude),
		})
	}

	phase := analysis.CurrentPhase
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Current phase", phase.Phase},
		[]interface{}{"Completion %", cell(phase.CycleCompletionPercent)},
		[]interface{}{"Recent trend %", cell(phase.RecentTrendPercent)},
		[]interface{}{"Confidence", phase.Confidence},
	)
	return writeRows(f, sheet, rows)
}

func (e *WorkbookExporter) writeBalanceSheetsSheet(f *excelize.File, analysis *liquidity.BalanceSheetAnalysis) error {
	const sheet = "Balance Sheets"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	banks := make([]string, 0, len(analysis.ByBank))
	for bank := range analysis.ByBank {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	rows := [][]interface{}{{
		"Bank", "Current assets", "Peak assets", "YoY change %", "Policy", "Stance",
	}}
	for _, bank := range banks {
		b := analysis.ByBank[bank]
		rows = append(rows, []interface{}{
			bank, cell(b.CurrentAssets), cell(b.PeakAssets),
			cell(b.YoYChangePercent), b.CurrentPolicy, b.PolicyStance,
		})
	}
	rows = append(rows, []interface{}{
		"TOTAL", cell(analysis.Aggregate.TotalAssets), nil,
		cell(analysis.Aggregate.YoYChangePercent), nil, nil,
	})
	return writeRows(f, sheet, rows)
}

func (e *WorkbookExporter) writeCorrelationsSheet(f *excelize.File, correlations map[string]*liquidity.AssetCorrelation) error {
	const sheet = "Correlations"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	classes := make([]string, 0, len(correlations))
	for class := range correlations {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	rows := [][]interface{}{{
		"Asset class", "Levels corr", "Returns corr", "Rolling 12M corr",
		"Liquidity driven", "Sensitivity",
	}}
	for _, class := range classes {
		c := correlations[class]
		if c == nil {
			continue
		}
		rows = append(rows, []interface{}{
			class, cell(c.LevelsCorrelation), cell(c.ReturnsCorrelation),
			cell(c.RollingCorrelation12), c.IsLiquidityDriven, c.Sensitivity,
		})
	}
	return writeRows(f, sheet, rows)
}

// writeRows writes each row starting at A1. Nil cells stay empty.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			if value == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("bad cell coordinate (%d,%d): %w", j+1, i+1, err)
			}
			if err := f.SetCellValue(sheet, name, value); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, name, err)
			}
		}
	}
	return nil
}

// cell maps undefined values to empty cells instead of writing NaN text
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func validity(valid bool) string {
	if valid {
		return "PASSED"
	}
	return "FAILED"
}
