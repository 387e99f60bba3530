package liquidity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmlcli/internal/consistency"
)

func findCheck(t *testing.T, report *consistency.Report, name string) consistency.Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.CheckName == name {
			return c
		}
	}
	t.Fatalf("check %q not found in report", name)
	return consistency.Check{}
}

func TestValidateCycleAnalysis(t *testing.T) {
	v := consistency.NewValidator(consistency.DefaultTolerance, nil)

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 60, 0)
	length := MonthsBetween(start, end)

	analysis := &CycleAnalysis{
		Cycles: []Cycle{{
			Number:       1,
			StartDate:    start,
			EndDate:      end,
			LengthMonths: length,
		}},
		CurrentPhase: CyclePosition{
			Phase:                  "expansion",
			CycleCompletionPercent: 10,
			MonthsElapsed:          6,
			MonthsToTurningPoint:   54,
		},
	}
	series := compounding(12, 100, 0.01)

	t.Run("consistent analysis", func(t *testing.T) {
		report := ValidateCycleAnalysis(v, analysis, series)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "cycle_1_length").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "cycle_1_dates").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "average_cycle_length").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "cycle_phase_consistency").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "cycle_phase_consistency_completion").Status)
	})

	t.Run("length contradicts dates", func(t *testing.T) {
		tampered := *analysis
		tampered.Cycles = []Cycle{{
			Number:       1,
			StartDate:    start,
			EndDate:      start.AddDate(0, 30, 0),
			LengthMonths: length,
		}}

		report := ValidateCycleAnalysis(v, &tampered, series)
		assert.False(t, report.IsValid())
		assert.Equal(t, consistency.StatusError, findCheck(t, report, "cycle_1_dates").Status)
	})

	t.Run("phase contradicts trend", func(t *testing.T) {
		tampered := *analysis
		tampered.CurrentPhase.Phase = "expansion"

		report := ValidateCycleAnalysis(v, &tampered, compounding(12, 100, -0.04))
		assert.False(t, report.IsValid())
		assert.Equal(t, consistency.StatusError, findCheck(t, report, "cycle_phase_consistency").Status)
	})

	t.Run("implausible cycle length", func(t *testing.T) {
		tampered := *analysis
		shortEnd := start.AddDate(0, 20, 0)
		tampered.Cycles = []Cycle{{
			Number:       1,
			StartDate:    start,
			EndDate:      shortEnd,
			LengthMonths: MonthsBetween(start, shortEnd),
		}}

		report := ValidateCycleAnalysis(v, &tampered, series)
		assert.False(t, report.IsValid())
		assert.Equal(t, consistency.StatusError, findCheck(t, report, "cycle_1_length").Status)
		assert.Equal(t, consistency.StatusWarning, findCheck(t, report, "average_cycle_length").Status)
	})

	t.Run("nil analysis is skipped", func(t *testing.T) {
		report := ValidateCycleAnalysis(v, nil, series)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusSkipped, findCheck(t, report, "cycle_analysis").Status)
	})
}

func TestValidateAggregatesAnalysis(t *testing.T) {
	v := consistency.NewValidator(consistency.DefaultTolerance, nil)
	analyzer := NewAggregatesAnalyzer(nil)

	m0 := compounding(26, 1000, 0.01)
	data := map[string]Series{"M0": m0, "M1": scale(m0, 2)}
	gdp := scale(m0, 8)

	analysis, err := analyzer.AnalyzeAggregates(context.Background(), data, gdp)
	require.NoError(t, err)

	t.Run("analyzer output validates clean", func(t *testing.T) {
		report := ValidateAggregatesAnalysis(v, analysis, data)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "M1_yoy_growth").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "M1_mom_growth").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "M1_growth_consistency").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "M1_velocity").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "monetary_aggregates_hierarchy").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "M0_to_M1_correlation").Status)
	})

	t.Run("tampered growth rate is caught", func(t *testing.T) {
		metrics := analysis.Aggregates["M1"]
		original := metrics.CurrentYoYGrowth
		metrics.CurrentYoYGrowth = original + 50
		analysis.Aggregates["M1"] = metrics
		defer func() {
			metrics.CurrentYoYGrowth = original
			analysis.Aggregates["M1"] = metrics
		}()

		report := ValidateAggregatesAnalysis(v, analysis, data)
		assert.False(t, report.IsValid())
		check := findCheck(t, report, "M1_yoy_growth")
		assert.Equal(t, consistency.StatusError, check.Status)
		assert.InDelta(t, 50.0, check.Details["difference"].(float64), 1e-6)
	})

	t.Run("nil analysis is skipped", func(t *testing.T) {
		report := ValidateAggregatesAnalysis(v, nil, data)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusSkipped, findCheck(t, report, "aggregates_analysis").Status)
	})
}

func TestValidateBalanceSheetAnalysis(t *testing.T) {
	v := consistency.NewValidator(consistency.DefaultTolerance, nil)
	analyzer := NewBalanceSheetAnalyzer(DefaultQEThreshold, nil)

	data := map[string]Series{
		"fed": compounding(26, 7000, 0.02),
		"ecb": compounding(26, 6000, -0.02),
	}
	analysis, err := analyzer.AnalyzeBalanceSheets(context.Background(), data)
	require.NoError(t, err)

	t.Run("analyzer output validates clean", func(t *testing.T) {
		report := ValidateBalanceSheetAnalysis(v, analysis, data)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "fed_yoy_change").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "fed_policy_stance").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "ecb_policy_stance").Status)
	})

	t.Run("stance contradicting direction is caught", func(t *testing.T) {
		tampered := analysis.ByBank["ecb"]
		tampered.PolicyStance = consistency.StanceExpansive
		analysis.ByBank["ecb"] = tampered
		defer func() {
			tampered.PolicyStance = consistency.StanceContractive
			analysis.ByBank["ecb"] = tampered
		}()

		report := ValidateBalanceSheetAnalysis(v, analysis, data)
		assert.False(t, report.IsValid())
		assert.Equal(t, consistency.StatusError, findCheck(t, report, "ecb_policy_stance").Status)
	})

	t.Run("empty analysis is skipped", func(t *testing.T) {
		report := ValidateBalanceSheetAnalysis(v, nil, data)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusSkipped, findCheck(t, report, "balance_sheet_analysis").Status)
	})
}

func TestValidateAssetCorrelations(t *testing.T) {
	v := consistency.NewValidator(consistency.DefaultTolerance, nil)

	correlations := map[string]*AssetCorrelation{
		"equities": {
			AssetClass:         "equities",
			LevelsCorrelation:  0.9,
			ReturnsCorrelation: 0.7,
			LagCorrelations:    map[int]float64{1: 0.6, 3: 0.4},
		},
	}

	t.Run("plausible coefficients pass", func(t *testing.T) {
		report := ValidateAssetCorrelations(v, correlations)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "equities_levels_correlation").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "equities_returns_correlation").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "equities_lag_1_correlation").Status)
		assert.Equal(t, consistency.StatusPassed, findCheck(t, report, "equities_lag_3_correlation").Status)
	})

	t.Run("impossible coefficient is caught", func(t *testing.T) {
		correlations["bonds"] = &AssetCorrelation{
			AssetClass:         "bonds",
			LevelsCorrelation:  1.5,
			ReturnsCorrelation: -0.2,
		}
		defer delete(correlations, "bonds")

		report := ValidateAssetCorrelations(v, correlations)
		assert.False(t, report.IsValid())
		assert.Equal(t, consistency.StatusError, findCheck(t, report, "bonds_levels_correlation").Status)
	})

	t.Run("no correlations is skipped", func(t *testing.T) {
		report := ValidateAssetCorrelations(v, nil)
		assert.True(t, report.IsValid())
		assert.Equal(t, consistency.StatusSkipped, findCheck(t, report, "asset_correlations").Status)
	})
}

func TestValidationIsDeterministic(t *testing.T) {
	v := consistency.NewValidator(consistency.DefaultTolerance, nil)

	correlations := map[string]*AssetCorrelation{
		"bonds":    {LevelsCorrelation: 0.1, ReturnsCorrelation: 0.2, LagCorrelations: map[int]float64{3: 0.1, 1: 0.2, 12: 0.3, 6: 0.4}},
		"equities": {LevelsCorrelation: 0.3, ReturnsCorrelation: 0.4},
		"gold":     {LevelsCorrelation: 0.5, ReturnsCorrelation: 0.6},
	}

	first := ValidateAssetCorrelations(v, correlations)
	for i := 0; i < 10; i++ {
		again := ValidateAssetCorrelations(v, correlations)
		require.Equal(t, first.Checks, again.Checks)
	}
}
