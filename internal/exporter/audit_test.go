package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gmlcli/internal/consistency"
)

func writeAuditFixture(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)

	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func checkByName(t *testing.T, report *consistency.Report, name string) consistency.Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.CheckName == name {
			return c
		}
	}
	t.Fatalf("check %q not found in report", name)
	return consistency.Check{}
}

func TestAuditWorkbookClean(t *testing.T) {
	path := writeAuditFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "M2")
		f.SetCellValue("Sheet1", "B1", 4000.0)
		require.NoError(t, f.SetCellFormula("Sheet1", "C1", "IFERROR(B1/0,0)"))
	})

	report := NewExcelAuditor(nil).AuditWorkbook(context.Background(), path)

	assert.True(t, report.IsValid())
	guard := checkByName(t, report, "workbook_formula_guard")
	assert.Equal(t, consistency.StatusPassed, guard.Status)
	values := checkByName(t, report, "workbook_error_values")
	assert.Equal(t, consistency.StatusPassed, values.Status)
}

func TestAuditWorkbookFlagsUnguardedZeroDivision(t *testing.T) {
	path := writeAuditFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", 100.0)
		require.NoError(t, f.SetCellFormula("Sheet1", "B1", "A1/0"))
	})

	report := NewExcelAuditor(nil).AuditWorkbook(context.Background(), path)

	assert.False(t, report.IsValid())
	guard := checkByName(t, report, "workbook_formula_guard")
	assert.Equal(t, consistency.StatusError, guard.Status)
	assert.Contains(t, guard.Details["cells"], "Sheet1!B1")
}

func TestAuditWorkbookFlagsErrorLiterals(t *testing.T) {
	path := writeAuditFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "#DIV/0!")
		f.SetCellValue("Sheet1", "B1", "ok")
	})

	report := NewExcelAuditor(nil).AuditWorkbook(context.Background(), path)

	assert.False(t, report.IsValid())
	values := checkByName(t, report, "workbook_error_values")
	assert.Equal(t, consistency.StatusError, values.Status)
	assert.Contains(t, values.Details["cells"], "Sheet1!A1 #DIV/0!")
}

func TestAuditWorkbookIgnoresNonzeroDenominators(t *testing.T) {
	path := writeAuditFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", 100.0)
		require.NoError(t, f.SetCellFormula("Sheet1", "B1", "A1/0.5"))
	})

	report := NewExcelAuditor(nil).AuditWorkbook(context.Background(), path)

	guard := checkByName(t, report, "workbook_formula_guard")
	assert.Equal(t, consistency.StatusPassed, guard.Status)
}

func TestAuditWorkbookMissingFile(t *testing.T) {
	report := NewExcelAuditor(nil).AuditWorkbook(context.Background(),
		filepath.Join(t.TempDir(), "missing.xlsx"))

	assert.False(t, report.IsValid())
	open := checkByName(t, report, "workbook_open")
	assert.Equal(t, consistency.StatusError, open.Status)
}

func TestAuditWorkbookRespectsCancellation(t *testing.T) {
	path := writeAuditFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewExcelAuditor(nil).AuditWorkbook(ctx, path)

	skipped := checkByName(t, report, "workbook_audit")
	assert.Equal(t, consistency.StatusSkipped, skipped.Status)
}

func TestHasUnguardedZeroDivision(t *testing.T) {
	cases := []struct {
		formula string
		want    bool
	}{
		{"A1/0", true},
		{"SUM(A1:A5)/0", true},
		{"A1/0.5", false},
		{"A1/012", false},
		{"IFERROR(A1/0,0)", false},
		{"A1+B1", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, hasUnguardedZeroDivision(tc.formula), "formula %q", tc.formula)
	}
}
