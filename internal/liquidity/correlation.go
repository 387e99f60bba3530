package liquidity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Correlation thresholds for sensitivity classification
const (
	liquidityDrivenThreshold = 0.3
	highSensitivityThreshold = 0.5
	// RollingCorrelationWindow is the lookback for the rolling returns
	// correlation
	RollingCorrelationWindow = 12
)

// Lags (in periods) at which liquidity is tested as a leading indicator
var defaultLags = []int{1, 3, 6, 12}

// AssetCorrelation summarizes how one asset class co-moves with the
// liquidity index
type AssetCorrelation struct {
	AssetClass           string          `json:"asset_class"`
	LevelsCorrelation    float64         `json:"levels_correlation"`
	ReturnsCorrelation   float64         `json:"returns_correlation"`
	RollingCorrelation12 float64         `json:"rolling_correlation_12"`
	LagCorrelations      map[int]float64 `json:"lag_correlations"`
	IsLiquidityDriven    bool            `json:"is_liquidity_driven"`
	Sensitivity          string          `json:"sensitivity"`
	DataPoints           int             `json:"data_points"`
}

// CorrelationAnalyzer measures liquidity/asset-price co-movement
type CorrelationAnalyzer struct {
	maxConcurrency int
	logger         *slog.Logger
}

// NewCorrelationAnalyzer creates a correlation analyzer
func NewCorrelationAnalyzer(logger *slog.Logger) *CorrelationAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorrelationAnalyzer{maxConcurrency: 4, logger: logger}
}

// AnalyzeAssetCorrelation correlates the liquidity index with one asset
// price series, in levels and returns, with a rolling window and lead
// lags
func (ca *CorrelationAnalyzer) AnalyzeAssetCorrelation(ctx context.Context, liquidityIndex, asset Series, assetClass string) (*AssetCorrelation, error) {
	liquidityIndex.SortByDate()
	asset.SortByDate()

	liqLevels, assetLevels := AlignDates(liquidityIndex, asset)
	if len(liqLevels) < 3 {
		return nil, fmt.Errorf("insufficient overlapping observations for %s correlation: have %d",
			assetClass, len(liqLevels))
	}

	liqReturns := pctChanges(liqLevels)
	assetReturns := pctChanges(assetLevels)
	returnsCorr := Correlation(liqReturns, assetReturns)

	rolling := math.NaN()
	if len(liqReturns) >= RollingCorrelationWindow {
		start := len(liqReturns) - RollingCorrelationWindow
		rolling = Correlation(liqReturns[start:], assetReturns[start:])
	}

	lagCorrs := make(map[int]float64, len(defaultLags))
	for _, lag := range defaultLags {
		if len(liqReturns) > lag {
			lagCorrs[lag] = Correlation(liqReturns[:len(liqReturns)-lag], assetReturns[lag:])
		}
	}

	result := &AssetCorrelation{
		AssetClass:           assetClass,
		LevelsCorrelation:    Correlation(liqLevels, assetLevels),
		ReturnsCorrelation:   returnsCorr,
		RollingCorrelation12: rolling,
		LagCorrelations:      lagCorrs,
		IsLiquidityDriven: math.Abs(returnsCorr) > liquidityDrivenThreshold ||
			math.Abs(rolling) > liquidityDrivenThreshold,
		Sensitivity: classifySensitivity(returnsCorr),
		DataPoints:  len(liqLevels),
	}

	ca.logger.DebugContext(ctx, "asset correlation complete",
		"asset_class", assetClass,
		"returns_correlation", returnsCorr,
		"sensitivity", result.Sensitivity,
	)

	return result, nil
}

// AnalyzeMultipleAssets analyzes several asset classes concurrently.
// An asset class without enough overlapping data is skipped with a
// warning rather than failing the batch.
func (ca *CorrelationAnalyzer) AnalyzeMultipleAssets(ctx context.Context, liquidityIndex Series, assets map[string]Series) (map[string]*AssetCorrelation, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("no asset data provided")
	}

	// Sort once up front: the per-class goroutines share this slice.
	liquidityIndex.SortByDate()

	classes := make([]string, 0, len(assets))
	for class := range assets {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	results := make([]*AssetCorrelation, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ca.maxConcurrency)

	for i, class := range classes {
		g.Go(func() error {
			result, err := ca.AnalyzeAssetCorrelation(gctx, liquidityIndex, assets[class], class)
			if err != nil {
				ca.logger.WarnContext(gctx, "skipping asset class",
					"asset_class", class, "error", err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*AssetCorrelation, len(classes))
	for i, class := range classes {
		if results[i] != nil {
			out[class] = results[i]
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no asset class had sufficient overlapping data")
	}
	return out, nil
}

func classifySensitivity(returnsCorr float64) string {
	abs := math.Abs(returnsCorr)
	switch {
	case abs > highSensitivityThreshold:
		return "high"
	case abs > liquidityDrivenThreshold:
		return "medium"
	default:
		return "low"
	}
}

// pctChanges converts a level sequence to fractional changes
func pctChanges(levels []float64) []float64 {
	if len(levels) < 2 {
		return nil
	}
	changes := make([]float64, len(levels)-1)
	for i := 1; i < len(levels); i++ {
		if levels[i-1] == 0 || math.IsNaN(levels[i-1]) || math.IsNaN(levels[i]) {
			changes[i-1] = math.NaN()
			continue
		}
		changes[i-1] = (levels[i] - levels[i-1]) / levels[i-1]
	}
	return changes
}
