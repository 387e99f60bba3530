package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"gmlcli/internal/consistency"
)

// ExcelAuditor re-opens generated workbooks and flags formula-level
// problems. It satisfies consistency.WorkbookAuditor.
type ExcelAuditor struct {
	logger *slog.Logger
}

// NewExcelAuditor creates a workbook auditor
func NewExcelAuditor(logger *slog.Logger) *ExcelAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelAuditor{logger: logger}
}

var errorLiterals = []string{"#DIV/0!", "#VALUE!", "#REF!", "#NAME?", "#N/A", "#NUM!"}

// AuditWorkbook scans every sheet for division-by-zero formulas that are
// not guarded by IFERROR, and for cells whose evaluated value is an Excel
// error literal
func (a *ExcelAuditor) AuditWorkbook(ctx context.Context, path string) *consistency.Report {
	report := consistency.NewReport()

	f, err := excelize.OpenFile(path)
	if err != nil {
		report.AddError("workbook_open",
			fmt.Sprintf("failed to open workbook %s: %v", path, err), nil)
		return report
	}
	defer f.Close()

	var unguarded, errorCells []string
	formulas := 0

	for _, sheet := range f.GetSheetList() {
		if ctx.Err() != nil {
			report.AddSkipped("workbook_audit", "audit cancelled for "+path)
			return report
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			report.AddError("workbook_audit",
				fmt.Sprintf("failed to read sheet %s: %v", sheet, err), nil)
			continue
		}

		for i, row := range rows {
			for j, value := range row {
				name, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					continue
				}
				ref := sheet + "!" + name

				if formula, err := f.GetCellFormula(sheet, name); err == nil && formula != "" {
					formulas++
					if hasUnguardedZeroDivision(formula) {
						unguarded = append(unguarded, ref)
					}
				}
				for _, literal := range errorLiterals {
					if strings.TrimSpace(value) == literal {
						errorCells = append(errorCells, ref+" "+literal)
						break
					}
				}
			}
		}
	}

	if len(unguarded) > 0 {
		report.AddError("workbook_formula_guard",
			fmt.Sprintf("%d formula(s) divide by zero without IFERROR guard", len(unguarded)),
			map[string]interface{}{"cells": clip(unguarded, 20)})
	} else {
		report.AddPassed("workbook_formula_guard",
			fmt.Sprintf("no unguarded zero divisions across %d formula(s)", formulas))
	}

	if len(errorCells) > 0 {
		report.AddError("workbook_error_values",
			fmt.Sprintf("%d cell(s) evaluate to Excel error literals", len(errorCells)),
			map[string]interface{}{"cells": clip(errorCells, 20)})
	} else {
		report.AddPassed("workbook_error_values", "no Excel error literals found")
	}

	a.logger.Info("workbook audit complete",
		slog.String("path", path),
		slog.Int("formulas", formulas),
		slog.Int("unguarded", len(unguarded)),
		slog.Int("error_cells", len(errorCells)))

	return report
}

// hasUnguardedZeroDivision reports whether the formula contains a literal
// division by zero outside an IFERROR wrapper. Cell-reference denominators
// are runtime concerns surfaced by the error-literal scan instead.
func hasUnguardedZeroDivision(formula string) bool {
	upper := strings.ToUpper(formula)
	if !strings.Contains(upper, "/0") {
		return false
	}
	// "/0" followed by another digit or a decimal point is a nonzero
	// denominator like /0.5 or /012
	idx := 0
	for {
		pos := strings.Index(upper[idx:], "/0")
		if pos < 0 {
			return false
		}
		after := idx + pos + 2
		if after >= len(upper) || !isNumericContinuation(upper[after]) {
			return !strings.Contains(upper, "IFERROR(")
		}
		idx = after
	}
}

func isNumericContinuation(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}

func clip(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}
