package liquidity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangle builds n monthly observations tracing a triangle wave with the
// given period, oscillating between 100 and 100+period/2
func triangle(n, period int) Series {
	values := make([]float64, n)
	half := period / 2
	for i := range values {
		pos := i % period
		if pos <= half {
			values[i] = 100 + float64(pos)
		} else {
			values[i] = 100 + float64(period-pos)
		}
	}
	return monthly(values...)
}

func TestIdentifyCycles(t *testing.T) {
	analyzer := NewCycleAnalyzer(DefaultDetectionWindow, nil)
	series := triangle(100, 40)

	analysis, err := analyzer.IdentifyCycles(context.Background(), series)
	require.NoError(t, err)

	// Peaks at months 20 and 60, troughs at 40 and 80. The edges of the
	// series fall outside the detection window.
	require.Len(t, analysis.TurningPoints, 4)
	assert.Equal(t, KindPeak, analysis.TurningPoints[0].Kind)
	assert.Equal(t, KindTrough, analysis.TurningPoints[1].Kind)
	assert.Equal(t, KindPeak, analysis.TurningPoints[2].Kind)
	assert.Equal(t, KindTrough, analysis.TurningPoints[3].Kind)
	assert.Equal(t, 120.0, analysis.TurningPoints[0].Value)
	assert.Equal(t, 100.0, analysis.TurningPoints[1].Value)

	require.Len(t, analysis.Cycles, 3)
	for i, cycle := range analysis.Cycles {
		assert.Equal(t, i+1, cycle.Number)
		assert.InDelta(t, 20.0, cycle.LengthMonths, 0.2)
		assert.Equal(t, 120.0, cycle.PeakValue)
		assert.Equal(t, 100.0, cycle.TroughValue)
		assert.Equal(t, 20.0, cycle.Amplitude)
	}

	assert.Equal(t, 100, analysis.DataPoints)
}

func TestIdentifyCyclesPhase(t *testing.T) {
	analyzer := NewCycleAnalyzer(DefaultDetectionWindow, nil)

	// Elapsed time is measured from the start of the most recent completed
	// cycle, the peak at month 60. The series runs 39 more months, so the
	// 20 month cycle is nearly twice over and no turning point can be
	// forecast from it. Values rise off the trough at month 80.
	analysis, err := analyzer.IdentifyCycles(context.Background(), triangle(100, 40))
	require.NoError(t, err)

	phase := analysis.CurrentPhase
	assert.Equal(t, "trough", phase.Phase)
	assert.InDelta(t, 39.0, phase.MonthsElapsed, 0.3)
	assert.InDelta(t, 195.0, phase.CycleCompletionPercent, 2.0)
	assert.Positive(t, phase.RecentTrendPercent)
	assert.Equal(t, "high", phase.Confidence)
	assert.Nil(t, phase.ForecastTurningPoint)
	assert.Zero(t, phase.MonthsToTurningPoint)
}

func TestIdentifyCyclesNoTurningPoints(t *testing.T) {
	analyzer := NewCycleAnalyzer(DefaultDetectionWindow, nil)

	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	analysis, err := analyzer.IdentifyCycles(context.Background(), monthly(values...))
	require.NoError(t, err)

	assert.Empty(t, analysis.TurningPoints)
	assert.Empty(t, analysis.Cycles)
	assert.Equal(t, "unknown", analysis.CurrentPhase.Phase)
	assert.Equal(t, "low", analysis.CurrentPhase.Confidence)
}

func TestIdentifyCyclesInsufficientData(t *testing.T) {
	analyzer := NewCycleAnalyzer(DefaultDetectionWindow, nil)

	_, err := analyzer.IdentifyCycles(context.Background(), triangle(12, 40))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestForecastTurningPoint(t *testing.T) {
	analyzer := NewCycleAnalyzer(DefaultDetectionWindow, nil)

	analysis, err := analyzer.IdentifyCycles(context.Background(), triangle(100, 40))
	require.NoError(t, err)

	forecast, err := analyzer.ForecastTurningPoint(analysis)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, forecast.AverageCycleLengthMonths, 0.2)
	assert.Equal(t, analysis.CurrentPhase.Phase, forecast.CurrentPhase)
	assert.Equal(t, analysis.CurrentPhase.Confidence, forecast.Confidence)

	t.Run("no cycles", func(t *testing.T) {
		_, err := analyzer.ForecastTurningPoint(&CycleAnalysis{})
		assert.Error(t, err)

		_, err = analyzer.ForecastTurningPoint(nil)
		assert.Error(t, err)
	})
}
