package liquidity

import (
	"fmt"
	"math"
	"sort"

	"gmlcli/internal/consistency"
)

// monthTolerance allows rounding slack when recomputing cycle lengths from
// their start and end dates
const monthTolerance = 1.0

// ValidateCycleAnalysis cross-checks cycle identification output: each
// cycle length against the plausible periodicity range and its own dates,
// the average cycle length, and the reported phase against the recent
// trend of the source series.
func ValidateCycleAnalysis(v *consistency.Validator, analysis *CycleAnalysis, series Series) *consistency.Report {
	report := consistency.NewReport()
	if analysis == nil {
		report.AddSkipped("cycle_analysis", "no cycle analysis available")
		return report
	}

	for _, cycle := range analysis.Cycles {
		name := fmt.Sprintf("cycle_%d_length", cycle.Number)
		report.Add(v.RangeCheck(name, cycle.LengthMonths, "cycle_length_months",
			"liquidity cycles typically run 50-75 months"))

		fromDates := MonthsBetween(cycle.StartDate, cycle.EndDate)
		difference := math.Abs(fromDates - cycle.LengthMonths)
		if difference > monthTolerance {
			report.AddError(fmt.Sprintf("cycle_%d_dates", cycle.Number),
				fmt.Sprintf("cycle %d length mismatch: calculated %.2f months, dates span %.2f months",
					cycle.Number, cycle.LengthMonths, fromDates),
				map[string]interface{}{
					"calculated": cycle.LengthMonths,
					"from_dates": fromDates,
					"difference": difference,
				})
		} else {
			report.AddPassed(fmt.Sprintf("cycle_%d_dates", cycle.Number),
				fmt.Sprintf("cycle %d dates are consistent", cycle.Number))
		}
	}

	if len(analysis.Cycles) > 0 {
		lengths := make([]float64, len(analysis.Cycles))
		for i, c := range analysis.Cycles {
			lengths[i] = c.LengthMonths
		}
		avg := meanSkipNaN(lengths)
		if ok, msg := v.ValidateRange(avg, "cycle_length_months", "average over identified cycles"); ok {
			report.AddPassed("average_cycle_length",
				fmt.Sprintf("average cycle length validated: %.2f months", avg))
		} else {
			report.AddWarning("average_cycle_length", msg,
				map[string]interface{}{"average_length_months": avg})
		}
	}

	phase := consistency.PhaseInfo{
		Phase:                  analysis.CurrentPhase.Phase,
		CycleCompletionPercent: analysis.CurrentPhase.CycleCompletionPercent,
		MonthsElapsed:          analysis.CurrentPhase.MonthsElapsed,
		MonthsToTurningPoint:   analysis.CurrentPhase.MonthsToTurningPoint,
	}
	report.Merge(v.ValidateCyclePhaseConsistency("cycle_phase_consistency", phase, series.Values()))

	return report
}

// ValidateAggregatesAnalysis recomputes each aggregate's reported growth
// from the raw series, checks the monetary hierarchy of latest values, and
// sanity-checks velocity and cross-aggregate correlations
func ValidateAggregatesAnalysis(v *consistency.Validator, analysis *AggregatesAnalysis, data map[string]Series) *consistency.Report {
	report := consistency.NewReport()
	if analysis == nil {
		report.AddSkipped("aggregates_analysis", "no aggregates analysis available")
		return report
	}

	latest := make(map[string]float64, len(data))

	for _, agg := range []string{"M0", "M1", "M2", "M3"} {
		metrics, ok := analysis.Aggregates[agg]
		if !ok {
			continue
		}
		series, haveSeries := data[agg]
		if !haveSeries || len(series) == 0 {
			continue
		}

		last, _ := series.Last()
		latest[agg] = last.Value

		if len(series) > PeriodsYoY {
			report.Add(v.ValidatePercentChange(agg+"_yoy_growth",
				last.Value, series[len(series)-1-PeriodsYoY].Value,
				metrics.CurrentYoYGrowth, -1))
		}
		if len(series) > 1 {
			report.Add(v.ValidatePercentChange(agg+"_mom_growth",
				last.Value, series[len(series)-2].Value,
				metrics.CurrentMoMGrowth, -1))
		}

		report.Merge(v.ValidateGrowthRateConsistency(agg+"_growth_consistency", series.Values()))

		if !math.IsNaN(metrics.CurrentVelocity) {
			if ok, msg := v.ValidateRange(metrics.CurrentVelocity, "velocity", agg+" velocity"); ok {
				report.AddPassed(agg+"_velocity",
					fmt.Sprintf("%s velocity validated: %.2f", agg, metrics.CurrentVelocity))
			} else {
				report.AddWarning(agg+"_velocity", msg,
					map[string]interface{}{"velocity": metrics.CurrentVelocity})
			}
		}
	}

	if len(latest) > 1 {
		report.Merge(v.ValidateAggregatesHierarchy("monetary_aggregates_hierarchy", latest))
	}

	for _, pair := range sortedKeys(analysis.Relationships) {
		report.Add(v.RangeCheck(pair+"_correlation", analysis.Relationships[pair].Correlation,
			"correlation", "cross-aggregate correlation"))
	}

	return report
}

// ValidateBalanceSheetAnalysis recomputes each bank's YoY change from the
// raw series and checks stance labels against balance sheet direction
func ValidateBalanceSheetAnalysis(v *consistency.Validator, analysis *BalanceSheetAnalysis, data map[string]Series) *consistency.Report {
	report := consistency.NewReport()
	if analysis == nil || len(analysis.ByBank) == 0 {
		report.AddSkipped("balance_sheet_analysis", "no balance sheet analysis available")
		return report
	}

	for _, bank := range sortedKeys(analysis.ByBank) {
		result := analysis.ByBank[bank]
		series, ok := data[bank]
		if ok && len(series) > PeriodsYoY {
			last, _ := series.Last()
			report.Add(v.ValidatePercentChange(bank+"_yoy_change",
				last.Value, series[len(series)-1-PeriodsYoY].Value,
				result.YoYChangePercent, -1))
		}

		report.Merge(v.ValidatePolicyStanceConsistency(bank+"_policy_stance",
			result.PolicyStance, result.RecentMonthlyChange, result.YoYChangePercent))
	}

	return report
}

// ValidateAssetCorrelations checks every reported correlation coefficient
// against the [-1, 1] range
func ValidateAssetCorrelations(v *consistency.Validator, correlations map[string]*AssetCorrelation) *consistency.Report {
	report := consistency.NewReport()
	if len(correlations) == 0 {
		report.AddSkipped("asset_correlations", "no correlation analysis available")
		return report
	}

	for _, class := range sortedKeys(correlations) {
		result := correlations[class]
		report.Add(v.RangeCheck(class+"_levels_correlation",
			result.LevelsCorrelation, "correlation", class+" levels"))
		report.Add(v.RangeCheck(class+"_returns_correlation",
			result.ReturnsCorrelation, "correlation", class+" returns"))

		lags := make([]int, 0, len(result.LagCorrelations))
		for lag := range result.LagCorrelations {
			lags = append(lags, lag)
		}
		sort.Ints(lags)
		for _, lag := range lags {
			report.Add(v.RangeCheck(fmt.Sprintf("%s_lag_%d_correlation", class, lag),
				result.LagCorrelations[lag], "correlation", class+" lagged returns"))
		}
	}

	return report
}

// sortedKeys returns the map's keys in ascending order so validation
// output is deterministic across runs
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
