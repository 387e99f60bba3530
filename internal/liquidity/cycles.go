package liquidity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gmlcli/internal/consistency"
)

// Turning point kinds
const (
	KindPeak   = "peak"
	KindTrough = "trough"
)

// Default detection window: a point must dominate this many observations on
// each side to count as a turning point
const DefaultDetectionWindow = 6

// TurningPoint is a local extreme of the liquidity index
type TurningPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Kind  string    `json:"kind"`
}

// Cycle describes one trough-to-trough (or peak-to-peak) segment
type Cycle struct {
	Number       int       `json:"cycle_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	StartValue   float64   `json:"start_value"`
	EndValue     float64   `json:"end_value"`
	LengthMonths float64   `json:"length_months"`
	PeakValue    float64   `json:"peak_value"`
	TroughValue  float64   `json:"trough_value"`
	Amplitude    float64   `json:"amplitude"`
}

// CyclePosition describes where the series currently sits in its cycle
type CyclePosition struct {
	Phase                  string     `json:"phase"`
	CycleCompletionPercent float64    `json:"cycle_completion_percent"`
	MonthsElapsed          float64    `json:"months_elapsed"`
	CurrentValue           float64    `json:"current_value"`
	RecentTrendPercent     float64    `json:"recent_trend_percent"`
	ForecastTurningPoint   *time.Time `json:"forecast_turning_point,omitempty"`
	MonthsToTurningPoint   float64    `json:"months_to_turning_point"`
	Confidence             string     `json:"confidence"`
}

// CycleAnalysis is the full output of cycle identification
type CycleAnalysis struct {
	TurningPoints []TurningPoint `json:"turning_points"`
	Cycles        []Cycle        `json:"cycles"`
	CurrentPhase  CyclePosition  `json:"current_phase"`
	DataPoints    int            `json:"data_points"`
}

// CycleForecast predicts the next turning point from historical cycle
// lengths
type CycleForecast struct {
	AverageCycleLengthMonths float64    `json:"average_cycle_length_months"`
	CurrentPhase             string     `json:"current_phase"`
	ForecastTurningPoint     *time.Time `json:"forecast_turning_point,omitempty"`
	MonthsToTurningPoint     float64    `json:"months_to_turning_point"`
	Confidence               string     `json:"confidence"`
}

// CycleAnalyzer identifies liquidity cycles and the current phase
type CycleAnalyzer struct {
	window int
	logger *slog.Logger
}

// NewCycleAnalyzer creates a cycle analyzer with the given detection
// window. A non-positive window falls back to the default.
func NewCycleAnalyzer(window int, logger *slog.Logger) *CycleAnalyzer {
	if window <= 0 {
		window = DefaultDetectionWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CycleAnalyzer{window: window, logger: logger}
}

// IdentifyCycles finds peaks and troughs in the liquidity index, derives
// cycle metrics from consecutive turning points, and positions the latest
// observation within its cycle
func (ca *CycleAnalyzer) IdentifyCycles(ctx context.Context, series Series) (*CycleAnalysis, error) {
	if len(series) < 2*ca.window+1 {
		return nil, fmt.Errorf("insufficient data for cycle identification: need %d observations, have %d",
			2*ca.window+1, len(series))
	}

	series.SortByDate()

	turningPoints := ca.findTurningPoints(series)
	cycles := ca.cycleMetrics(series, turningPoints)
	phase := ca.determinePhase(series, cycles)

	ca.logger.InfoContext(ctx, "cycle identification complete",
		"data_points", len(series),
		"turning_points", len(turningPoints),
		"cycles", len(cycles),
		"phase", phase.Phase,
	)

	return &CycleAnalysis{
		TurningPoints: turningPoints,
		Cycles:        cycles,
		CurrentPhase:  phase,
		DataPoints:    len(series),
	}, nil
}

// findTurningPoints detects local extremes that dominate the surrounding
// window on both sides
func (ca *CycleAnalyzer) findTurningPoints(series Series) []TurningPoint {
	var points []TurningPoint
	w := ca.window

	for i := w; i < len(series)-w; i++ {
		v := series[i].Value
		isPeak, isTrough := true, true
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if series[j].Value >= v {
				isPeak = false
			}
			if series[j].Value <= v {
				isTrough = false
			}
		}
		switch {
		case isPeak:
			points = append(points, TurningPoint{Date: series[i].Date, Value: v, Kind: KindPeak})
		case isTrough:
			points = append(points, TurningPoint{Date: series[i].Date, Value: v, Kind: KindTrough})
		}
	}
	return points
}

// cycleMetrics derives per-cycle metrics from consecutive turning points
func (ca *CycleAnalyzer) cycleMetrics(series Series, points []TurningPoint) []Cycle {
	var cycles []Cycle

	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]

		var segment Series
		for _, obs := range series {
			if !obs.Date.Before(start.Date) && !obs.Date.After(end.Date) {
				segment = append(segment, obs)
			}
		}

		peak := segment.Peak()
		trough := segment.Trough()

		cycles = append(cycles, Cycle{
			Number:       i + 1,
			StartDate:    start.Date,
			EndDate:      end.Date,
			StartValue:   start.Value,
			EndValue:     end.Value,
			LengthMonths: MonthsBetween(start.Date, end.Date),
			PeakValue:    peak,
			TroughValue:  trough,
			Amplitude:    peak - trough,
		})
	}
	return cycles
}

// determinePhase positions the latest observation within the most recent
// cycle. Phase follows completion quartiles refined by the recent trend:
// late-cycle rising values signal a trough forming, mid-cycle falling
// values a peak.
func (ca *CycleAnalyzer) determinePhase(series Series, cycles []Cycle) CyclePosition {
	last, _ := series.Last()

	if len(cycles) == 0 {
		return CyclePosition{
			Phase:        consistency.PhaseUnknown,
			CurrentValue: last.Value,
			Confidence:   "low",
		}
	}

	recent := cycles[len(cycles)-1]
	monthsElapsed := MonthsBetween(recent.StartDate, last.Date)
	completion := 0.0
	if recent.LengthMonths > 0 {
		completion = monthsElapsed / recent.LengthMonths * 100
	}

	trend := series.RecentTrendPercent(consistency.TrendPeriods)

	var phase string
	switch {
	case completion < 25:
		phase = consistency.PhaseExpansion
	case completion < 50:
		if trend < 0 {
			phase = consistency.PhasePeak
		} else {
			phase = consistency.PhaseExpansion
		}
	case completion < 75:
		phase = consistency.PhaseContraction
	default:
		if trend > 0 {
			phase = consistency.PhaseTrough
		} else {
			phase = consistency.PhaseContraction
		}
	}

	position := CyclePosition{
		Phase:                  phase,
		CycleCompletionPercent: completion,
		MonthsElapsed:          monthsElapsed,
		CurrentValue:           last.Value,
		RecentTrendPercent:     trend,
	}

	if recent.LengthMonths > monthsElapsed {
		position.MonthsToTurningPoint = recent.LengthMonths - monthsElapsed
		forecast := last.Date.AddDate(0, 0, int(position.MonthsToTurningPoint*DaysPerMonth))
		position.ForecastTurningPoint = &forecast
	}

	if completion > 20 {
		position.Confidence = "high"
	} else {
		position.Confidence = "medium"
	}

	return position
}

// ForecastTurningPoint predicts the next turning point from the average
// historical cycle length
func (ca *CycleAnalyzer) ForecastTurningPoint(analysis *CycleAnalysis) (*CycleForecast, error) {
	if analysis == nil || len(analysis.Cycles) == 0 {
		return nil, fmt.Errorf("no cycles available for forecasting")
	}

	lengths := make([]float64, len(analysis.Cycles))
	for i, c := range analysis.Cycles {
		lengths[i] = c.LengthMonths
	}

	return &CycleForecast{
		AverageCycleLengthMonths: meanSkipNaN(lengths),
		CurrentPhase:             analysis.CurrentPhase.Phase,
		ForecastTurningPoint:     analysis.CurrentPhase.ForecastTurningPoint,
		MonthsToTurningPoint:     analysis.CurrentPhase.MonthsToTurningPoint,
		Confidence:               analysis.CurrentPhase.Confidence,
	}, nil
}
