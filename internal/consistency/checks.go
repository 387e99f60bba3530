package consistency

import (
	"fmt"
	"math"
)

// Canonical monetary aggregate ordering, narrowest to broadest
var aggregateHierarchy = []string{"M0", "M1", "M2", "M3"}

// Policy stance labels produced by the central bank analyzer
const (
	StanceExpansive   = "expansive"
	StanceContractive = "contractive"
	StanceNeutral     = "neutral"
	StanceMixed       = "mixed"
)

// Cycle phase labels produced by the cycle analyzer
const (
	PhaseExpansion   = "expansion"
	PhasePeak        = "peak"
	PhaseContraction = "contraction"
	PhaseTrough      = "trough"
	PhaseUnknown     = "unknown"
)

// ValidateGrowthRateConsistency recomputes the year-over-year growth of the
// last observation two ways, directly from the value 12 periods back and by
// compounding the 12 intervening period-over-period changes, and flags
// disagreement beyond the soft tolerance. Compounding drift is expected, so
// disagreement is a warning, not an error.
func (v *Validator) ValidateGrowthRateConsistency(name string, values []float64) *Report {
	report := NewReport()

	if len(values) < MinPeriodsForYoY {
		report.AddSkipped(name,
			fmt.Sprintf("insufficient data for growth rate consistency check (need %d periods, have %d)",
				MinPeriodsForYoY, len(values)))
		return report
	}

	current := values[len(values)-1]
	yearAgo := values[len(values)-MinPeriodsForYoY]
	if yearAgo == 0 || math.IsNaN(yearAgo) || math.IsNaN(current) {
		report.AddSkipped(name, "cannot recompute YoY growth: base value is zero or undefined")
		return report
	}

	directYoY := (current - yearAgo) / yearAgo * 100

	compounded := 1.0
	for i := len(values) - 12; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(values[i]) {
			continue
		}
		compounded *= values[i] / prev
	}
	compoundedYoY := (compounded - 1) * 100

	difference := math.Abs(directYoY - compoundedYoY)
	details := map[string]interface{}{
		"direct_yoy":     directYoY,
		"compounded_yoy": compoundedYoY,
		"difference":     difference,
		"tolerance":      SoftTolerance,
	}

	if difference > SoftTolerance {
		report.AddWarning(name,
			fmt.Sprintf("YoY growth (%.2f%%) differs from compounded MoM (%.2f%%)", directYoY, compoundedYoY),
			details)
	} else {
		report.AddPassed(name,
			fmt.Sprintf("YoY and compounded MoM are consistent (difference %.2f)", difference))
	}

	return report
}

// PhaseInfo carries the cycle positioning claims to be cross-checked
// against the underlying series
type PhaseInfo struct {
	Phase                  string  `json:"phase"`
	CycleCompletionPercent float64 `json:"cycle_completion_percent"`
	MonthsElapsed          float64 `json:"months_elapsed"`
	MonthsToTurningPoint   float64 `json:"months_to_turning_point"`
}

// cyclePhaseRules encodes which recent trends contradict which phase
// labels. An expansion against a falling trend is an error; a contraction
// against a rising trend merely a warning, since contractions commonly end
// with brief rallies.
var cyclePhaseRules = []CategoryRule{
	{Label: PhaseExpansion, ExpectedSign: 1, Hard: 2.0},
	{Label: PhaseContraction, ExpectedSign: -1, Soft: 2.0},
}

// ValidateCyclePhaseConsistency checks that the reported cycle phase agrees
// with the recent trend of the underlying series and that the reported
// cycle completion percentage matches elapsed/total recomputation.
func (v *Validator) ValidateCyclePhaseConsistency(name string, phase PhaseInfo, values []float64) *Report {
	report := NewReport()

	if phase.Phase == "" || phase.Phase == PhaseUnknown {
		report.AddSkipped(name, "phase is unknown, cannot validate")
		return report
	}

	if len(values) < TrendPeriods {
		report.AddSkipped(name, "insufficient data for trend validation")
		return report
	}

	trend := recentTrendPct(values, TrendPeriods)
	report.Merge(v.ValidateCategoryConsistency(name, phase.Phase, trend, trend, cyclePhaseRules))

	// Cross-check the completion percentage against its own inputs.
	cycleLength := phase.MonthsElapsed + phase.MonthsToTurningPoint
	if phase.MonthsToTurningPoint > 0 && cycleLength > 0 {
		expected := phase.MonthsElapsed / cycleLength * 100
		difference := math.Abs(phase.CycleCompletionPercent - expected)
		if difference > SoftTolerance {
			report.AddError(name+"_completion",
				fmt.Sprintf("cycle completion mismatch: %.2f%% vs expected %.2f%%",
					phase.CycleCompletionPercent, expected),
				map[string]interface{}{
					"reported":   phase.CycleCompletionPercent,
					"expected":   expected,
					"difference": difference,
				})
		} else {
			report.AddPassed(name+"_completion", "cycle completion percentage is consistent")
		}
	}

	return report
}

// policyStanceRules mirror the stance determination thresholds: a stance is
// only assigned "expansive" when YoY growth exceeds +5, so a balance sheet
// shrinking more than 5% YoY strongly contradicts it. The contractive case
// is the mirror image at warning severity.
var policyStanceRules = []CategoryRule{
	{Label: StanceExpansive, ExpectedSign: 1, Hard: 5.0},
	{Label: StanceContractive, ExpectedSign: -1, Soft: 5.0},
}

// ValidatePolicyStanceConsistency checks that a reported policy stance
// agrees with the direction of recent balance sheet changes
func (v *Validator) ValidatePolicyStanceConsistency(name, stance string, recentChange, yoyChange float64) *Report {
	return v.ValidateCategoryConsistency(name, stance, recentChange, yoyChange, policyStanceRules)
}

// ValidateAggregatesHierarchy verifies the M0 <= M1 <= M2 <= M3 ordering
// for whichever aggregates are present. Absent aggregates are ignored;
// present but non-positive ones are structural errors.
func (v *Validator) ValidateAggregatesHierarchy(name string, aggregates map[string]float64) *Report {
	var ordered []MetricSample
	for _, agg := range aggregateHierarchy {
		if val, ok := aggregates[agg]; ok {
			ordered = append(ordered, MetricSample{Name: agg, Value: val})
		}
	}
	return v.ValidateHierarchy(name, ordered)
}

// recentTrendPct returns the mean period-over-period change, in percent,
// over the trailing n observations
func recentTrendPct(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	window := values[len(values)-n:]

	var sum float64
	var count int
	for i := 1; i < len(window); i++ {
		prev := window[i-1]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(window[i]) {
			continue
		}
		sum += (window[i] - prev) / prev
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}
