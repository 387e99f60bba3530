package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gmlcli/internal/config"
	"gmlcli/internal/liquidity"
)

// MarketData bundles the input series for a full analysis run. Any
// section may be empty; the corresponding analysis is skipped.
type MarketData struct {
	LiquidityIndex liquidity.Series
	Aggregates     map[string]liquidity.Series
	GDP            liquidity.Series
	BalanceSheets  map[string]liquidity.Series
	AssetPrices    map[string]liquidity.Series
}

// MarketAnalysis is the combined output of all analyzers. Sections are
// nil when their input was absent.
type MarketAnalysis struct {
	GeneratedAt    time.Time                             `json:"generated_at"`
	Cycles         *liquidity.CycleAnalysis              `json:"cycles,omitempty"`
	Aggregates     *liquidity.AggregatesAnalysis         `json:"aggregates,omitempty"`
	CreditCreation *liquidity.CreditCreation             `json:"credit_creation,omitempty"`
	BalanceSheets  *liquidity.BalanceSheetAnalysis       `json:"balance_sheets,omitempty"`
	Correlations   map[string]*liquidity.AssetCorrelation `json:"correlations,omitempty"`
}

// AnalysisService runs the liquidity analyzers and assembles their output
type AnalysisService struct {
	cycles       *liquidity.CycleAnalyzer
	aggregates   *liquidity.AggregatesAnalyzer
	balanceSheet *liquidity.BalanceSheetAnalyzer
	correlation  *liquidity.CorrelationAnalyzer
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewAnalysisService creates an analysis service tuned by the validation
// configuration (cycle detection window, QE threshold)
func NewAnalysisService(cfg config.ValidationConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cycles:       liquidity.NewCycleAnalyzer(cfg.CycleWindow, logger),
		aggregates:   liquidity.NewAggregatesAnalyzer(logger),
		balanceSheet: liquidity.NewBalanceSheetAnalyzer(cfg.QEThreshold, logger),
		correlation:  liquidity.NewCorrelationAnalyzer(logger),
		tracer:       otel.Tracer("gmlcli/services"),
		logger:       logger.With(slog.String("component", "analysis_service")),
	}
}

// AnalyzeCycles identifies liquidity cycles in the index series
func (s *AnalysisService) AnalyzeCycles(ctx context.Context, index liquidity.Series) (*liquidity.CycleAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.cycles",
		trace.WithAttributes(attribute.Int("observations", len(index))))
	defer span.End()

	analysis, err := s.timed(ctx, "cycles", func() (interface{}, error) {
		return s.cycles.IdentifyCycles(ctx, index)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return analysis.(*liquidity.CycleAnalysis), nil
}

// AnalyzeAggregates computes growth and velocity for monetary aggregates
func (s *AnalysisService) AnalyzeAggregates(ctx context.Context, data map[string]liquidity.Series, gdp liquidity.Series) (*liquidity.AggregatesAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.aggregates",
		trace.WithAttributes(attribute.Int("aggregates", len(data))))
	defer span.End()

	analysis, err := s.timed(ctx, "aggregates", func() (interface{}, error) {
		return s.aggregates.AnalyzeAggregates(ctx, data, gdp)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return analysis.(*liquidity.AggregatesAnalysis), nil
}

// AnalyzeBalanceSheets analyzes central bank balance sheet series
func (s *AnalysisService) AnalyzeBalanceSheets(ctx context.Context, data map[string]liquidity.Series) (*liquidity.BalanceSheetAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.balance_sheets",
		trace.WithAttributes(attribute.Int("banks", len(data))))
	defer span.End()

	analysis, err := s.timed(ctx, "balance_sheets", func() (interface{}, error) {
		return s.balanceSheet.AnalyzeBalanceSheets(ctx, data)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return analysis.(*liquidity.BalanceSheetAnalysis), nil
}

// AnalyzeCorrelations measures asset class sensitivity to the liquidity
// index
func (s *AnalysisService) AnalyzeCorrelations(ctx context.Context, index liquidity.Series, assets map[string]liquidity.Series) (map[string]*liquidity.AssetCorrelation, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.correlations",
		trace.WithAttributes(attribute.Int("asset_classes", len(assets))))
	defer span.End()

	analysis, err := s.timed(ctx, "correlations", func() (interface{}, error) {
		return s.correlation.AnalyzeMultipleAssets(ctx, index, assets)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return analysis.(map[string]*liquidity.AssetCorrelation), nil
}

// RunFull runs every analyzer whose input is present. A failing section
// fails the run; sections without input are skipped silently.
func (s *AnalysisService) RunFull(ctx context.Context, data MarketData) (*MarketAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.full")
	defer span.End()

	result := &MarketAnalysis{GeneratedAt: time.Now().UTC()}

	if len(data.LiquidityIndex) > 0 {
		cycles, err := s.AnalyzeCycles(ctx, data.LiquidityIndex)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("cycle analysis: %w", err)
		}
		result.Cycles = cycles
	}

	if len(data.Aggregates) > 0 {
		aggregates, err := s.AnalyzeAggregates(ctx, data.Aggregates, data.GDP)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("aggregates analysis: %w", err)
		}
		result.Aggregates = aggregates

		if m2, ok := data.Aggregates["M2"]; ok {
			credit, err := s.aggregates.CalculateCreditCreation(ctx, m2, data.Aggregates["M0"])
			if err != nil {
				s.logger.WarnContext(ctx, "credit creation skipped",
					slog.String("error", err.Error()))
			} else {
				result.CreditCreation = credit
			}
		}
	}

	if len(data.BalanceSheets) > 0 {
		sheets, err := s.AnalyzeBalanceSheets(ctx, data.BalanceSheets)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("balance sheet analysis: %w", err)
		}
		result.BalanceSheets = sheets
	}

	if len(data.LiquidityIndex) > 0 && len(data.AssetPrices) > 0 {
		correlations, err := s.AnalyzeCorrelations(ctx, data.LiquidityIndex, data.AssetPrices)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("correlation analysis: %w", err)
		}
		result.Correlations = correlations
	}

	return result, nil
}

// timed wraps one analyzer call with duration and error metrics
func (s *AnalysisService) timed(ctx context.Context, kind string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := fn()
	analysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		analysisErrorsTotal.WithLabelValues(kind).Inc()
		s.logger.ErrorContext(ctx, "analysis failed",
			slog.String("analysis", kind),
			slog.String("error", err.Error()))
	}
	return result, err
}
