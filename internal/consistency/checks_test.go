package consistency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlySeries builds n observations growing at the given monthly rate
func monthlySeries(n int, start, monthlyRate float64) []float64 {
	values := make([]float64, n)
	values[0] = start
	for i := 1; i < n; i++ {
		values[i] = values[i-1] * (1 + monthlyRate)
	}
	return values
}

func TestValidateGrowthRateConsistency(t *testing.T) {
	v := NewValidator(DefaultTolerance, nil)

	t.Run("steady growth is self-consistent", func(t *testing.T) {
		report := v.ValidateGrowthRateConsistency("growth", monthlySeries(24, 100, 0.01))
		require.Len(t, report.Checks, 1)
		assert.Equal(t, StatusPassed, report.Checks[0].Status)
	})

	t.Run("short history is skipped", func(t *testing.T) {
		report := v.ValidateGrowthRateConsistency("growth", monthlySeries(12, 100, 0.01))
		require.Len(t, report.Checks, 1)
		assert.Equal(t, StatusSkipped, report.Checks[0].Status)
	})

	t.Run("zero base is skipped not a crash", func(t *testing.T) {
		values := monthlySeries(14, 100, 0.01)
		values[1] = 0 // base for the YoY recomputation
		report := v.ValidateGrowthRateConsistency("growth", values)
		require.Len(t, report.Checks, 1)
		assert.Equal(t, StatusSkipped, report.Checks[0].Status)
	})
}

func TestValidateCyclePhaseConsistency(t *testing.T) {
	v := NewValidator(DefaultTolerance, nil)

	rising := monthlySeries(12, 100, 0.05)
	falling := monthlySeries(12, 100, -0.05)

	t.Run("expansion with rising trend passes", func(t *testing.T) {
		report := v.ValidateCyclePhaseConsistency("phase", PhaseInfo{Phase: PhaseExpansion}, rising)
		require.NotEmpty(t, report.Checks)
		assert.Equal(t, StatusPassed, report.Checks[0].Status)
	})

	t.Run("expansion against falling trend is error", func(t *testing.T) {
		report := v.ValidateCyclePhaseConsistency("phase", PhaseInfo{Phase: PhaseExpansion}, falling)
		require.NotEmpty(t, report.Checks)
		assert.Equal(t, StatusError, report.Checks[0].Status)
	})

	t.Run("contraction against rising trend warns", func(t *testing.T) {
		report := v.ValidateCyclePhaseConsistency("phase", PhaseInfo{Phase: PhaseContraction}, rising)
		require.NotEmpty(t, report.Checks)
		assert.Equal(t, StatusWarning, report.Checks[0].Status)
	})

	t.Run("unknown phase is skipped", func(t *testing.T) {
		report := v.ValidateCyclePhaseConsistency("phase", PhaseInfo{Phase: PhaseUnknown}, rising)
		require.Len(t, report.Checks, 1)
		assert.Equal(t, StatusSkipped, report.Checks[0].Status)
	})

	t.Run("insufficient history is skipped", func(t *testing.T) {
		report := v.ValidateCyclePhaseConsistency("phase", PhaseInfo{Phase: PhaseExpansion}, rising[:3])
		require.Len(t, report.Checks, 1)
		assert.Equal(t, StatusSkipped, report.Checks[0].Status)
	})

	t.Run("completion percentage recomputed from elapsed months", func(t *testing.T) {
		phase := PhaseInfo{
			Phase:                  PhaseExpansion,
			MonthsElapsed:          30,
			MonthsToTurningPoint:   30,
			CycleCompletionPercent: 50,
		}
		report := v.ValidateCyclePhaseConsistency("phase", phase, rising)
		require.Len(t, report.Checks, 2)
		assert.Equal(t, StatusPassed, report.Checks[1].Status)

		phase.CycleCompletionPercent = 80
		report = v.ValidateCyclePhaseConsistency("phase", phase, rising)
		require.Len(t, report.Checks, 2)
		assert.Equal(t, StatusError, report.Checks[1].Status)
		assert.Equal(t, 50.0, report.Checks[1].Details["expected"])
	})
}

func TestValidatePolicyStanceConsistency(t *testing.T) {
	v := NewValidator(DefaultTolerance, nil)

	tests := []struct {
		name                    string
		stance                  string
		recentChange, yoyChange float64
		want                    Status
	}{
		{"expansive with growing balance sheet", StanceExpansive, 50.0, 12.0, StatusPassed},
		{"expansive with shrinking balance sheet", StanceExpansive, -50.0, -8.0, StatusError},
		{"expansive with mild shrinkage tolerated", StanceExpansive, -50.0, -3.0, StatusPassed},
		{"contractive with growing balance sheet", StanceContractive, 50.0, 8.0, StatusWarning},
		{"contractive with shrinking balance sheet", StanceContractive, -50.0, -8.0, StatusPassed},
		{"neutral always passes", StanceNeutral, -99.0, -99.0, StatusPassed},
		{"mixed always passes", StanceMixed, 99.0, 99.0, StatusPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.ValidatePolicyStanceConsistency("stance", tt.stance, tt.recentChange, tt.yoyChange)
			require.Len(t, report.Checks, 1)
			assert.Equal(t, tt.want, report.Checks[0].Status)
		})
	}
}

func TestValidateAggregatesHierarchy(t *testing.T) {
	v := NewValidator(DefaultTolerance, nil)

	t.Run("correct hierarchy", func(t *testing.T) {
		report := v.ValidateAggregatesHierarchy("aggregates", map[string]float64{
			"M0": 5_000, "M1": 18_000, "M2": 21_000, "M3": 24_000,
		})
		assert.True(t, report.IsValid())
		assert.Equal(t, 3, report.CountByStatus(StatusPassed))
	})

	t.Run("violation names the broken link", func(t *testing.T) {
		report := v.ValidateAggregatesHierarchy("aggregates", map[string]float64{
			"M0": 5_000, "M1": 25_000, "M2": 21_000, "M3": 24_000,
		})
		assert.False(t, report.IsValid())
		assert.Equal(t, 1, report.CountByStatus(StatusError))
		found := false
		for _, c := range report.Checks {
			if c.Status == StatusError {
				assert.Contains(t, c.Message, "M1")
				assert.Contains(t, c.Message, "M2")
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("absent aggregates are ignored", func(t *testing.T) {
		report := v.ValidateAggregatesHierarchy("aggregates", map[string]float64{
			"M0": 5_000, "M2": 21_000,
		})
		assert.True(t, report.IsValid())
		assert.Len(t, report.Checks, 1)
	})

	t.Run("NaN aggregate is structural error", func(t *testing.T) {
		report := v.ValidateAggregatesHierarchy("aggregates", map[string]float64{
			"M0": math.NaN(), "M1": 18_000,
		})
		assert.False(t, report.IsValid())
	})
}

func TestRecentTrendPct(t *testing.T) {
	t.Run("steady growth", func(t *testing.T) {
		trend := recentTrendPct(monthlySeries(12, 100, 0.02), 6)
		assert.InDelta(t, 2.0, trend, 1e-9)
	})

	t.Run("flat series", func(t *testing.T) {
		assert.Equal(t, 0.0, recentTrendPct([]float64{5, 5, 5, 5, 5, 5}, 6))
	})

	t.Run("all-zero series does not divide by zero", func(t *testing.T) {
		assert.Equal(t, 0.0, recentTrendPct([]float64{0, 0, 0, 0, 0, 0}, 6))
	})
}
