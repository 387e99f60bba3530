package liquidity

import (
	"encoding/json"
	"math"
	"time"
)

// Analyzer results use NaN for "not computable" (short history, missing
// GDP, zero variance). encoding/json rejects NaN, so the result types
// that can carry it marshal undefined values as null.

// nullable returns nil for undefined values so JSON carries null
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nullableMap(m map[int]float64) map[int]*float64 {
	if m == nil {
		return nil
	}
	out := make(map[int]*float64, len(m))
	for k, v := range m {
		out[k] = nullable(v)
	}
	return out
}

// MarshalJSON emits null for growth and velocity figures that could not
// be computed
func (m AggregateMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CurrentValue      *float64 `json:"current_value"`
		CurrentYoYGrowth  *float64 `json:"current_yoy_growth"`
		CurrentMoMGrowth  *float64 `json:"current_mom_growth"`
		CurrentQoQGrowth  *float64 `json:"current_qoq_growth"`
		AverageYoYGrowth  *float64 `json:"average_yoy_growth"`
		AverageMoMGrowth  *float64 `json:"average_mom_growth"`
		RecentTrend6M     *float64 `json:"recent_trend_6m"`
		PeakValue         *float64 `json:"peak_value"`
		TroughValue       *float64 `json:"trough_value"`
		CurrentVelocity   *float64 `json:"current_velocity"`
		VelocityChangeYoY *float64 `json:"velocity_change_yoy"`
		Definition        string   `json:"definition"`
		DataPoints        int      `json:"data_points"`
	}{
		nullable(m.CurrentValue), nullable(m.CurrentYoYGrowth),
		nullable(m.CurrentMoMGrowth), nullable(m.CurrentQoQGrowth),
		nullable(m.AverageYoYGrowth), nullable(m.AverageMoMGrowth),
		nullable(m.RecentTrend6M), nullable(m.PeakValue),
		nullable(m.TroughValue), nullable(m.CurrentVelocity),
		nullable(m.VelocityChangeYoY), m.Definition, m.DataPoints,
	})
}

func (r AggregateRelationship) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CurrentRatio *float64 `json:"current_ratio"`
		AverageRatio *float64 `json:"average_ratio"`
		Correlation  *float64 `json:"correlation"`
	}{
		nullable(r.CurrentRatio), nullable(r.AverageRatio), nullable(r.Correlation),
	})
}

func (b BankAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CurrentAssets       *float64       `json:"current_assets"`
		PeakAssets          *float64       `json:"peak_assets"`
		PeakDate            time.Time      `json:"peak_date"`
		RecentMonthlyChange *float64       `json:"recent_monthly_change"`
		YoYChangePercent    *float64       `json:"yoy_change_percent"`
		YoYChangeAbsolute   *float64       `json:"yoy_change_absolute"`
		QEPeriods           []PolicyPeriod `json:"qe_periods"`
		QTPeriods           []PolicyPeriod `json:"qt_periods"`
		CurrentPolicy       string         `json:"current_policy"`
		PolicyStance        string         `json:"policy_stance"`
		DataPoints          int            `json:"data_points"`
	}{
		nullable(b.CurrentAssets), nullable(b.PeakAssets), b.PeakDate,
		nullable(b.RecentMonthlyChange), nullable(b.YoYChangePercent),
		nullable(b.YoYChangeAbsolute), b.QEPeriods, b.QTPeriods,
		b.CurrentPolicy, b.PolicyStance, b.DataPoints,
	})
}

func (a AggregateBalanceSheet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalAssets      *float64  `json:"total_assets"`
		YoYChangePercent *float64  `json:"yoy_change_percent"`
		AnalysisDate     time.Time `json:"analysis_date"`
		BanksAnalyzed    int       `json:"banks_analyzed"`
	}{
		nullable(a.TotalAssets), nullable(a.YoYChangePercent),
		a.AnalysisDate, a.BanksAnalyzed,
	})
}

func (r RateAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CurrentRate       *float64 `json:"current_rate"`
		RecentChangeBps   *float64 `json:"recent_change_bps"`
		TotalChange12MBps *float64 `json:"total_change_12m_bps"`
	}{
		nullable(r.CurrentRate), nullable(r.RecentChangeBps), nullable(r.TotalChange12MBps),
	})
}

func (c AssetCorrelation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AssetClass           string           `json:"asset_class"`
		LevelsCorrelation    *float64         `json:"levels_correlation"`
		ReturnsCorrelation   *float64         `json:"returns_correlation"`
		RollingCorrelation12 *float64         `json:"rolling_correlation_12"`
		LagCorrelations      map[int]*float64 `json:"lag_correlations"`
		IsLiquidityDriven    bool             `json:"is_liquidity_driven"`
		Sensitivity          string           `json:"sensitivity"`
		DataPoints           int              `json:"data_points"`
	}{
		c.AssetClass, nullable(c.LevelsCorrelation), nullable(c.ReturnsCorrelation),
		nullable(c.RollingCorrelation12), nullableMap(c.LagCorrelations),
		c.IsLiquidityDriven, c.Sensitivity, c.DataPoints,
	})
}
