package liquidity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminePolicyStance(t *testing.T) {
	tests := []struct {
		name         string
		recentChange float64
		yoyChange    float64
		want         string
	}{
		{"growing balance sheet", 50.0, 12.0, "expansive"},
		{"shrinking balance sheet", -50.0, -12.0, "contractive"},
		{"flat balance sheet", 0.0, 0.5, "neutral"},
		{"growing monthly but flat yearly", 50.0, 2.0, "mixed"},
		{"conflicting directions", -50.0, 8.0, "mixed"},
		{"undefined yoy", 50.0, math.NaN(), "mixed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeterminePolicyStance(tt.recentChange, tt.yoyChange))
		})
	}
}

func TestAnalyzeBalanceSheets(t *testing.T) {
	analyzer := NewBalanceSheetAnalyzer(DefaultQEThreshold, nil)

	fed := compounding(26, 7000, 0.02)
	ecb := compounding(26, 6000, -0.02)

	analysis, err := analyzer.AnalyzeBalanceSheets(context.Background(),
		map[string]Series{"fed": fed, "ecb": ecb})
	require.NoError(t, err)
	require.Len(t, analysis.ByBank, 2)

	fedResult := analysis.ByBank["fed"]
	assert.InDelta(t, 26.824, fedResult.YoYChangePercent, 1e-2)
	assert.Positive(t, fedResult.RecentMonthlyChange)
	assert.Equal(t, "expansive", fedResult.PolicyStance)
	assert.Equal(t, "QE", fedResult.CurrentPolicy)
	assert.Equal(t, fed[len(fed)-1].Value, fedResult.PeakAssets)
	assert.Equal(t, fed[len(fed)-1].Date, fedResult.PeakDate)
	assert.Equal(t, 26, fedResult.DataPoints)

	ecbResult := analysis.ByBank["ecb"]
	assert.InDelta(t, -21.528, ecbResult.YoYChangePercent, 1e-2)
	assert.Equal(t, "contractive", ecbResult.PolicyStance)
	assert.Equal(t, "QT", ecbResult.CurrentPolicy)
	assert.Equal(t, ecb[0].Value, ecbResult.PeakAssets)

	expectedTotal := fed[len(fed)-1].Value + ecb[len(ecb)-1].Value
	assert.InDelta(t, expectedTotal, analysis.Aggregate.TotalAssets, 1e-9)
	assert.Equal(t, 2, analysis.Aggregate.BanksAnalyzed)
	assert.False(t, math.IsNaN(analysis.Aggregate.YoYChangePercent))
}

func TestAnalyzeBalanceSheetsPolicyPeriods(t *testing.T) {
	analyzer := NewBalanceSheetAnalyzer(DefaultQEThreshold, nil)

	// Twelve months of 2% expansion followed by twelve months of 2%
	// contraction: one closed QE period, QT still running.
	values := make([]float64, 24)
	values[0] = 1000
	for i := 1; i < 12; i++ {
		values[i] = values[i-1] * 1.02
	}
	for i := 12; i < 24; i++ {
		values[i] = values[i-1] * 0.98
	}
	series := monthly(values...)

	analysis, err := analyzer.AnalyzeBalanceSheets(context.Background(),
		map[string]Series{"fed": series})
	require.NoError(t, err)

	result := analysis.ByBank["fed"]
	require.Len(t, result.QEPeriods, 1)
	assert.Empty(t, result.QTPeriods)
	assert.Equal(t, "QT", result.CurrentPolicy)

	qe := result.QEPeriods[0]
	assert.Equal(t, series[1].Date, qe.Start)
	assert.Equal(t, series[11].Date, qe.End)
	assert.InDelta(t, 10.0, qe.DurationMonths, 0.2)
}

func TestAnalyzeBalanceSheetsNoUsableData(t *testing.T) {
	analyzer := NewBalanceSheetAnalyzer(DefaultQEThreshold, nil)

	_, err := analyzer.AnalyzeBalanceSheets(context.Background(), map[string]Series{})
	assert.Error(t, err)

	// A single observation is not enough to compute any change.
	_, err = analyzer.AnalyzeBalanceSheets(context.Background(),
		map[string]Series{"fed": monthly(1000)})
	assert.Error(t, err)
}

func TestAnalyzeRateChanges(t *testing.T) {
	analyzer := NewBalanceSheetAnalyzer(DefaultQEThreshold, nil)

	values := make([]float64, 14)
	for i := range values {
		values[i] = 0.05
	}
	values[13] = 0.0550

	result, err := analyzer.AnalyzeRateChanges(context.Background(), monthly(values...))
	require.NoError(t, err)
	assert.InDelta(t, 0.0550, result.CurrentRate, 1e-9)
	assert.InDelta(t, 50.0, result.RecentChangeBps, 1e-6)
	assert.InDelta(t, 50.0, result.TotalChange12MBps, 1e-6)

	t.Run("short history has no 12 month change", func(t *testing.T) {
		result, err := analyzer.AnalyzeRateChanges(context.Background(), monthly(0.05, 0.0525))
		require.NoError(t, err)
		assert.InDelta(t, 25.0, result.RecentChangeBps, 1e-6)
		assert.True(t, math.IsNaN(result.TotalChange12MBps))
	})

	t.Run("insufficient history", func(t *testing.T) {
		_, err := analyzer.AnalyzeRateChanges(context.Background(), monthly(0.05))
		assert.Error(t, err)
	})
}
