package exporter

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gmlcli/internal/consistency"
	"gmlcli/internal/liquidity"
)

func testWorkbookInput() WorkbookInput {
	report := consistency.NewReport()
	report.AddPassed("m2_yoy_growth", "reported matches recomputed")
	report.AddWarning("velocity_range", "velocity 14.2 near upper bound", nil)

	start := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)
	return WorkbookInput{
		Report: report,
		Cycles: &liquidity.CycleAnalysis{
			Cycles: []liquidity.Cycle{{
				Number: 1, StartDate: start, EndDate: start.AddDate(5, 0, 0),
				LengthMonths: 60, PeakValue: 120, TroughValue: 95, Amplitude: 26.3,
			}},
			CurrentPhase: liquidity.CyclePosition{Phase: "expansion", Confidence: "medium"},
		},
		Aggregates: &liquidity.AggregatesAnalysis{
			Aggregates: map[string]liquidity.AggregateMetrics{
				"M2": {CurrentValue: 4000, CurrentYoYGrowth: 12.68, CurrentVelocity: math.NaN(), DataPoints: 26},
			},
		},
		CreditCreation: &liquidity.CreditCreation{
			CurrentCreditGrowth: 12.68,
			Multiplier:          &liquidity.MultiplierMetrics{Current: 4},
		},
		BalanceSheets: &liquidity.BalanceSheetAnalysis{
			ByBank: map[string]liquidity.BankAnalysis{
				"fed": {CurrentAssets: 7500, CurrentPolicy: "QE", PolicyStance: "expansive"},
			},
			Aggregate: liquidity.AggregateBalanceSheet{TotalAssets: 7500, BanksAnalyzed: 1},
		},
		Correlations: map[string]*liquidity.AssetCorrelation{
			"equities": {AssetClass: "equities", LevelsCorrelation: 0.99, Sensitivity: "high"},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	exporter := NewWorkbookExporter(dir, nil)

	require.NoError(t, exporter.WriteWorkbook("analysis.xlsx", testWorkbookInput()))

	f, err := excelize.OpenFile(filepath.Join(dir, "analysis.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t,
		[]string{"Summary", "Checks", "Aggregates", "Cycles", "Balance Sheets", "Correlations"},
		sheets, "default Sheet1 must be removed")

	name, err := f.GetCellValue("Checks", "A2")
	require.NoError(t, err)
	assert.Equal(t, "m2_yoy_growth", name)

	status, err := f.GetCellValue("Checks", "B3")
	require.NoError(t, err)
	assert.Equal(t, "warning", status)

	velocity, err := f.GetCellValue("Aggregates", "E2")
	require.NoError(t, err)
	assert.Empty(t, velocity, "NaN velocity should leave the cell empty")

	phase, err := f.GetCellValue("Cycles", "B4")
	require.NoError(t, err)
	assert.Equal(t, "expansion", phase)
}

func TestWriteWorkbookOmitsAbsentSections(t *testing.T) {
	dir := t.TempDir()
	exporter := NewWorkbookExporter(dir, nil)

	report := consistency.NewReport()
	report.AddSkipped("cycle_analysis", "no liquidity index provided")

	require.NoError(t, exporter.WriteWorkbook("sparse.xlsx", WorkbookInput{Report: report}))

	f, err := excelize.OpenFile(filepath.Join(dir, "sparse.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Checks"}, f.GetSheetList())
}
