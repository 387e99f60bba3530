package liquidity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gmlcli/internal/consistency"
)

// DefaultQEThreshold is the monthly fractional balance sheet change above
// which a period counts as quantitative easing (below the negative of it,
// tightening)
const DefaultQEThreshold = 0.01

// PolicyPeriod is a sustained QE or QT stretch
type PolicyPeriod struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	DurationMonths float64   `json:"duration_months"`
}

// BankAnalysis summarizes one central bank's balance sheet behavior
type BankAnalysis struct {
	CurrentAssets       float64        `json:"current_assets"`
	PeakAssets          float64        `json:"peak_assets"`
	PeakDate            time.Time      `json:"peak_date"`
	RecentMonthlyChange float64        `json:"recent_monthly_change"`
	YoYChangePercent    float64        `json:"yoy_change_percent"`
	YoYChangeAbsolute   float64        `json:"yoy_change_absolute"`
	QEPeriods           []PolicyPeriod `json:"qe_periods"`
	QTPeriods           []PolicyPeriod `json:"qt_periods"`
	CurrentPolicy       string         `json:"current_policy"`
	PolicyStance        string         `json:"policy_stance"`
	DataPoints          int            `json:"data_points"`
}

// AggregateBalanceSheet sums the latest balance sheet position across
// banks
type AggregateBalanceSheet struct {
	TotalAssets      float64   `json:"total_assets"`
	YoYChangePercent float64   `json:"yoy_change_percent"`
	AnalysisDate     time.Time `json:"analysis_date"`
	BanksAnalyzed    int       `json:"banks_analyzed"`
}

// BalanceSheetAnalysis is the full output of central bank analysis
type BalanceSheetAnalysis struct {
	ByBank    map[string]BankAnalysis `json:"by_bank"`
	Aggregate AggregateBalanceSheet   `json:"aggregate"`
}

// RateAnalysis summarizes policy rate movements
type RateAnalysis struct {
	CurrentRate       float64 `json:"current_rate"`
	RecentChangeBps   float64 `json:"recent_change_bps"`
	TotalChange12MBps float64 `json:"total_change_12m_bps"`
}

// BalanceSheetAnalyzer analyzes central bank balance sheet time series
type BalanceSheetAnalyzer struct {
	qeThreshold float64
	logger      *slog.Logger
}

// NewBalanceSheetAnalyzer creates a balance sheet analyzer. A non-positive
// threshold falls back to the default 1% monthly change.
func NewBalanceSheetAnalyzer(qeThreshold float64, logger *slog.Logger) *BalanceSheetAnalyzer {
	if qeThreshold <= 0 {
		qeThreshold = DefaultQEThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceSheetAnalyzer{qeThreshold: qeThreshold, logger: logger}
}

// AnalyzeBalanceSheets analyzes each bank's total asset series and
// aggregates the latest positions. data maps bank identifiers to monthly
// total-asset series.
func (ba *BalanceSheetAnalyzer) AnalyzeBalanceSheets(ctx context.Context, data map[string]Series) (*BalanceSheetAnalysis, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no balance sheet data provided")
	}

	analysis := &BalanceSheetAnalysis{ByBank: make(map[string]BankAnalysis, len(data))}

	var totalAssets, totalYearAgo float64
	var latestDate time.Time
	haveYearAgo := true

	for bank, series := range data {
		if len(series) < 2 {
			ba.logger.WarnContext(ctx, "skipping bank with insufficient balance sheet history",
				"bank", bank, "data_points", len(series))
			continue
		}
		series.SortByDate()

		result := ba.analyzeBank(series)
		analysis.ByBank[bank] = result

		last, _ := series.Last()
		totalAssets += last.Value
		if last.Date.After(latestDate) {
			latestDate = last.Date
		}
		if len(series) > PeriodsYoY {
			totalYearAgo += series[len(series)-1-PeriodsYoY].Value
		} else {
			haveYearAgo = false
		}
	}

	if len(analysis.ByBank) == 0 {
		return nil, fmt.Errorf("no usable balance sheet series")
	}

	analysis.Aggregate = AggregateBalanceSheet{
		TotalAssets:      totalAssets,
		YoYChangePercent: math.NaN(),
		AnalysisDate:     latestDate,
		BanksAnalyzed:    len(analysis.ByBank),
	}
	if haveYearAgo && totalYearAgo != 0 {
		analysis.Aggregate.YoYChangePercent = (totalAssets - totalYearAgo) / totalYearAgo * 100
	}

	ba.logger.InfoContext(ctx, "balance sheet analysis complete",
		"banks", len(analysis.ByBank),
		"total_assets", totalAssets,
	)

	return analysis, nil
}

// analyzeBank computes changes, QE/QT segmentation, and stance for one
// bank's sorted series
func (ba *BalanceSheetAnalyzer) analyzeBank(series Series) BankAnalysis {
	last, _ := series.Last()
	recentChange := last.Value - series[len(series)-2].Value
	yoyPercent := series.GrowthRate(PeriodsYoY)

	yoyAbsolute := math.NaN()
	if len(series) > PeriodsYoY {
		yoyAbsolute = last.Value - series[len(series)-1-PeriodsYoY].Value
	}

	peakValue := math.Inf(-1)
	var peakDate time.Time
	for _, obs := range series {
		if !math.IsNaN(obs.Value) && obs.Value > peakValue {
			peakValue = obs.Value
			peakDate = obs.Date
		}
	}

	qe, qt, currentPolicy := ba.segmentPolicyPeriods(series)

	return BankAnalysis{
		CurrentAssets:       last.Value,
		PeakAssets:          peakValue,
		PeakDate:            peakDate,
		RecentMonthlyChange: recentChange,
		YoYChangePercent:    yoyPercent,
		YoYChangeAbsolute:   yoyAbsolute,
		QEPeriods:           qe,
		QTPeriods:           qt,
		CurrentPolicy:       currentPolicy,
		PolicyStance:        DeterminePolicyStance(recentChange, yoyPercent),
		DataPoints:          len(series),
	}
}

// segmentPolicyPeriods splits the series into sustained easing and
// tightening stretches. A period closes when the monthly change crosses
// the opposite threshold; changes inside the dead band extend the current
// period.
func (ba *BalanceSheetAnalyzer) segmentPolicyPeriods(series Series) (qe, qt []PolicyPeriod, current string) {
	const (
		policyQE = "QE"
		policyQT = "QT"
	)
	current = "neutral"
	var periodStart time.Time

	closePeriod := func(endDate time.Time) {
		period := PolicyPeriod{
			Start:          periodStart,
			End:            endDate,
			DurationMonths: MonthsBetween(periodStart, endDate),
		}
		if current == policyQE {
			qe = append(qe, period)
		} else {
			qt = append(qt, period)
		}
	}

	for i := 1; i < len(series); i++ {
		prev := series[i-1].Value
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(series[i].Value) {
			continue
		}
		changePct := (series[i].Value - prev) / prev

		switch {
		case changePct > ba.qeThreshold && current != policyQE:
			if current == policyQT {
				closePeriod(series[i-1].Date)
			}
			current = policyQE
			periodStart = series[i].Date
		case changePct < -ba.qeThreshold && current != policyQT:
			if current == policyQE {
				closePeriod(series[i-1].Date)
			}
			current = policyQT
			periodStart = series[i].Date
		}
	}
	return qe, qt, current
}

// DeterminePolicyStance classifies balance sheet behavior into a stance
// label. Thresholds mirror the ones the stance validator uses: expansive
// and contractive require the monthly and YoY signals to agree beyond 5
// YoY points.
func DeterminePolicyStance(recentChange, yoyChange float64) string {
	switch {
	case math.IsNaN(recentChange) || math.IsNaN(yoyChange):
		return consistency.StanceMixed
	case recentChange > 0 && yoyChange > 5:
		return consistency.StanceExpansive
	case recentChange < 0 && yoyChange < -5:
		return consistency.StanceContractive
	case math.Abs(recentChange) < 0.01 && math.Abs(yoyChange) < 1:
		return consistency.StanceNeutral
	default:
		return consistency.StanceMixed
	}
}

// AnalyzeRateChanges summarizes policy rate movements in basis points
func (ba *BalanceSheetAnalyzer) AnalyzeRateChanges(ctx context.Context, rates Series) (*RateAnalysis, error) {
	if len(rates) < 2 {
		return nil, fmt.Errorf("insufficient rate history: need 2 observations, have %d", len(rates))
	}
	rates.SortByDate()

	last, _ := rates.Last()
	result := &RateAnalysis{
		CurrentRate:       last.Value,
		RecentChangeBps:   (last.Value - rates[len(rates)-2].Value) * 10000,
		TotalChange12MBps: math.NaN(),
	}
	if len(rates) > PeriodsYoY {
		result.TotalChange12MBps = (last.Value - rates[len(rates)-1-PeriodsYoY].Value) * 10000
	}

	ba.logger.DebugContext(ctx, "rate change analysis complete",
		"current_rate", result.CurrentRate,
		"recent_change_bps", result.RecentChangeBps,
	)

	return result, nil
}
