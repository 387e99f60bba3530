package liquidity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Growth periods for monthly data
const (
	PeriodsMoM = 1
	PeriodsQoQ = 3
	PeriodsYoY = 12
)

// AggregateDefinitions describes the standard monetary aggregates,
// narrowest to broadest
var AggregateDefinitions = map[string]string{
	"M0": "Base money (currency in circulation + central bank reserves)",
	"M1": "Narrow money (M0 + demand deposits)",
	"M2": "Broad money (M1 + savings deposits + time deposits)",
	"M3": "Extended broad money (M2 + large time deposits + institutional money funds)",
}

// AggregateMetrics summarizes one monetary aggregate's growth profile.
// Velocity fields are NaN when no GDP series was supplied.
type AggregateMetrics struct {
	CurrentValue      float64 `json:"current_value"`
	CurrentYoYGrowth  float64 `json:"current_yoy_growth"`
	CurrentMoMGrowth  float64 `json:"current_mom_growth"`
	CurrentQoQGrowth  float64 `json:"current_qoq_growth"`
	AverageYoYGrowth  float64 `json:"average_yoy_growth"`
	AverageMoMGrowth  float64 `json:"average_mom_growth"`
	RecentTrend6M     float64 `json:"recent_trend_6m"`
	PeakValue         float64 `json:"peak_value"`
	TroughValue       float64 `json:"trough_value"`
	CurrentVelocity   float64 `json:"current_velocity"`
	VelocityChangeYoY float64 `json:"velocity_change_yoy"`
	Definition        string  `json:"definition"`
	DataPoints        int     `json:"data_points"`
}

// AggregateRelationship captures the ratio and co-movement between a pair
// of aggregates
type AggregateRelationship struct {
	CurrentRatio float64 `json:"current_ratio"`
	AverageRatio float64 `json:"average_ratio"`
	Correlation  float64 `json:"correlation"`
}

// AggregatesAnalysis is the full output of monetary aggregate analysis
type AggregatesAnalysis struct {
	Aggregates    map[string]AggregateMetrics      `json:"aggregates"`
	Relationships map[string]AggregateRelationship `json:"relationships,omitempty"`
	DataPoints    int                              `json:"data_points"`
}

// MultiplierMetrics describes the M2/M0 money multiplier
type MultiplierMetrics struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Trend6M float64 `json:"trend_6m"`
}

// CreditCreation summarizes broad-money growth as a credit creation proxy
type CreditCreation struct {
	CurrentCreditGrowth float64            `json:"current_credit_growth"`
	AverageCreditGrowth float64            `json:"average_credit_growth"`
	CreditCreation12M   float64            `json:"credit_creation_12m"`
	CreditTrend         float64            `json:"credit_trend"`
	Multiplier          *MultiplierMetrics `json:"money_multiplier,omitempty"`
}

// AggregatesAnalyzer computes growth, velocity, and cross-aggregate
// relationships for monetary aggregate series
type AggregatesAnalyzer struct {
	logger *slog.Logger
}

// NewAggregatesAnalyzer creates a monetary aggregates analyzer
func NewAggregatesAnalyzer(logger *slog.Logger) *AggregatesAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregatesAnalyzer{logger: logger}
}

// AnalyzeAggregates computes growth rates and velocity per aggregate plus
// pairwise relationships. data maps aggregate names (M0..M3) to monthly
// series; gdp may be nil, in which case velocity fields are NaN.
func (aa *AggregatesAnalyzer) AnalyzeAggregates(ctx context.Context, data map[string]Series, gdp Series) (*AggregatesAnalysis, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no monetary aggregate data provided")
	}

	analysis := &AggregatesAnalysis{
		Aggregates: make(map[string]AggregateMetrics, len(data)),
	}

	for name, series := range data {
		if len(series) == 0 {
			continue
		}
		series.SortByDate()

		last, _ := series.Last()
		metrics := AggregateMetrics{
			CurrentValue:      last.Value,
			CurrentYoYGrowth:  series.GrowthRate(PeriodsYoY),
			CurrentMoMGrowth:  series.GrowthRate(PeriodsMoM),
			CurrentQoQGrowth:  series.GrowthRate(PeriodsQoQ),
			AverageYoYGrowth:  averageGrowth(series, PeriodsYoY),
			AverageMoMGrowth:  averageGrowth(series, PeriodsMoM),
			RecentTrend6M:     series.RecentTrendPercent(6),
			PeakValue:         series.Peak(),
			TroughValue:       series.Trough(),
			CurrentVelocity:   math.NaN(),
			VelocityChangeYoY: math.NaN(),
			Definition:        AggregateDefinitions[name],
			DataPoints:        len(series),
		}

		if len(gdp) > 0 {
			metrics.CurrentVelocity, metrics.VelocityChangeYoY = velocity(series, gdp)
		}

		analysis.Aggregates[name] = metrics
		if len(series) > analysis.DataPoints {
			analysis.DataPoints = len(series)
		}
	}

	if len(analysis.Aggregates) == 0 {
		return nil, fmt.Errorf("no usable monetary aggregate series")
	}

	if len(data) > 1 {
		analysis.Relationships = aa.relationships(data)
	}

	aa.logger.InfoContext(ctx, "monetary aggregates analysis complete",
		"aggregates", len(analysis.Aggregates),
		"relationships", len(analysis.Relationships),
		"data_points", analysis.DataPoints,
	)

	return analysis, nil
}

// relationships computes ratio and correlation for each ordered aggregate
// pair, keyed "M0_to_M1" style
func (aa *AggregatesAnalyzer) relationships(data map[string]Series) map[string]AggregateRelationship {
	order := []string{"M0", "M1", "M2", "M3"}
	result := make(map[string]AggregateRelationship)

	for i, narrow := range order {
		narrowSeries, ok := data[narrow]
		if !ok {
			continue
		}
		for _, broad := range order[i+1:] {
			broadSeries, ok := data[broad]
			if !ok {
				continue
			}

			left, right := AlignDates(narrowSeries, broadSeries)
			if len(left) == 0 {
				continue
			}

			ratios := make([]float64, len(left))
			for k := range left {
				if right[k] == 0 {
					ratios[k] = math.NaN()
					continue
				}
				ratios[k] = left[k] / right[k]
			}

			result[narrow+"_to_"+broad] = AggregateRelationship{
				CurrentRatio: ratios[len(ratios)-1],
				AverageRatio: meanSkipNaN(ratios),
				Correlation:  Correlation(left, right),
			}
		}
	}
	return result
}

// CalculateCreditCreation uses broad money growth as a credit creation
// proxy, with the M2/M0 money multiplier when base money is supplied
func (aa *AggregatesAnalyzer) CalculateCreditCreation(ctx context.Context, m2, m0 Series) (*CreditCreation, error) {
	if len(m2) <= PeriodsYoY {
		return nil, fmt.Errorf("insufficient M2 history for credit creation: need %d observations, have %d",
			PeriodsYoY+1, len(m2))
	}
	m2.SortByDate()

	last, _ := m2.Last()
	yearAgo := m2[len(m2)-1-PeriodsYoY].Value

	result := &CreditCreation{
		CurrentCreditGrowth: m2.GrowthRate(PeriodsYoY),
		AverageCreditGrowth: averageGrowth(m2, PeriodsYoY),
		CreditCreation12M:   last.Value - yearAgo,
		CreditTrend:         m2.RecentTrendPercent(6),
	}

	if len(m0) > 0 {
		m0.SortByDate()
		m2Vals, m0Vals := AlignDates(m2, m0)
		if len(m2Vals) > 0 {
			multipliers := make([]float64, len(m2Vals))
			for i := range m2Vals {
				if m0Vals[i] == 0 {
					multipliers[i] = math.NaN()
					continue
				}
				multipliers[i] = m2Vals[i] / m0Vals[i]
			}
			multiplierSeries := make(Series, len(multipliers))
			for i, m := range multipliers {
				multiplierSeries[i] = Observation{Value: m}
			}
			result.Multiplier = &MultiplierMetrics{
				Current: multipliers[len(multipliers)-1],
				Average: meanSkipNaN(multipliers),
				Trend6M: multiplierSeries.RecentTrendPercent(6),
			}
		}
	}

	aa.logger.InfoContext(ctx, "credit creation analysis complete",
		"credit_growth", result.CurrentCreditGrowth,
		"has_multiplier", result.Multiplier != nil,
	)

	return result, nil
}

// averageGrowth averages the rolling percent change at the given period
// across the whole series
func averageGrowth(series Series, periods int) float64 {
	if len(series) <= periods {
		return math.NaN()
	}
	growths := make([]float64, 0, len(series)-periods)
	for i := periods; i < len(series); i++ {
		base := series[i-periods].Value
		if base == 0 || math.IsNaN(base) || math.IsNaN(series[i].Value) {
			continue
		}
		growths = append(growths, (series[i].Value-base)/base*100)
	}
	return meanSkipNaN(growths)
}

// velocity returns current GDP/aggregate velocity and its YoY change
func velocity(aggregate, gdp Series) (current, changeYoY float64) {
	aggVals, gdpVals := AlignDates(aggregate, gdp)
	if len(aggVals) == 0 {
		return math.NaN(), math.NaN()
	}

	velocities := make([]float64, len(aggVals))
	for i := range aggVals {
		if aggVals[i] == 0 {
			velocities[i] = math.NaN()
			continue
		}
		velocities[i] = gdpVals[i] / aggVals[i]
	}

	current = velocities[len(velocities)-1]
	changeYoY = math.NaN()
	if len(velocities) > PeriodsYoY {
		base := velocities[len(velocities)-1-PeriodsYoY]
		if base != 0 && !math.IsNaN(base) && !math.IsNaN(current) {
			changeYoY = (current - base) / base * 100
		}
	}
	return current, changeYoY
}
