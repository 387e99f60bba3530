package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gmlcli/internal/config"
	"gmlcli/internal/consistency"
	"gmlcli/internal/liquidity"
)

// ValidationService cross-checks analyzer output for internal consistency
type ValidationService struct {
	validator *consistency.Validator
	failFast  bool
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewValidationService creates a validation service from configuration.
// Configured range overrides replace the built-in plausible ranges per
// metric type.
func NewValidationService(cfg config.ValidationConfig, logger *slog.Logger) *ValidationService {
	if logger == nil {
		logger = slog.Default()
	}
	v := consistency.NewValidator(cfg.Tolerance, logger)
	for metricType, r := range cfg.Ranges {
		v.SetRange(metricType, consistency.MetricRange{Min: r.Min, Max: r.Max})
	}
	return &ValidationService{
		validator: v,
		failFast:  cfg.FailFast,
		tracer:    otel.Tracer("gmlcli/services"),
		logger:    logger.With(slog.String("component", "validation_service")),
	}
}

// Validator exposes the underlying consistency validator for callers that
// compose their own checks
func (s *ValidationService) Validator() *consistency.Validator {
	return s.validator
}

// ValidatePercentChange recomputes a percent change and compares it to the
// reported figure. A non-positive tolerance uses the configured default.
func (s *ValidationService) ValidatePercentChange(name string, current, previous, reported, tolerance float64) consistency.Check {
	return s.validator.ValidatePercentChange(name, current, previous, reported, tolerance)
}

// ValidateRange checks one value against the plausible range for its
// metric type
func (s *ValidationService) ValidateRange(name string, value float64, metricType, context string) consistency.Check {
	return s.validator.RangeCheck(name, value, metricType, context)
}

// ValidateHierarchy checks that the named values are non-decreasing
func (s *ValidationService) ValidateHierarchy(name string, ordered []consistency.MetricSample) *consistency.Report {
	return s.validator.ValidateHierarchy(name, ordered)
}

// ValidateAnalysis cross-checks a full analysis result against the raw
// input data it was computed from. Sections without output are recorded
// as skipped, never as failures.
func (s *ValidationService) ValidateAnalysis(ctx context.Context, analysis *MarketAnalysis, data MarketData) *consistency.Report {
	ctx, span := s.tracer.Start(ctx, "validation.analysis")
	defer span.End()

	checks := []consistency.NamedCheck{
		{Name: "cycle_analysis", Fn: func() *consistency.Report {
			return liquidity.ValidateCycleAnalysis(s.validator, analysis.Cycles, data.LiquidityIndex)
		}},
		{Name: "aggregates_analysis", Fn: func() *consistency.Report {
			return liquidity.ValidateAggregatesAnalysis(s.validator, analysis.Aggregates, data.Aggregates)
		}},
		{Name: "balance_sheet_analysis", Fn: func() *consistency.Report {
			return liquidity.ValidateBalanceSheetAnalysis(s.validator, analysis.BalanceSheets, data.BalanceSheets)
		}},
		{Name: "asset_correlations", Fn: func() *consistency.Report {
			return liquidity.ValidateAssetCorrelations(s.validator, analysis.Correlations)
		}},
	}

	report := s.validator.RunReport(ctx, checks, s.failFast)
	s.record(ctx, span, report)
	return report
}

// record feeds the report outcome into metrics and the active span
func (s *ValidationService) record(ctx context.Context, span trace.Span, report *consistency.Report) {
	summary := report.Summarize()

	result := "valid"
	if !summary.IsValid {
		result = "invalid"
	}
	validationRunsTotal.WithLabelValues(result).Inc()
	for _, status := range []consistency.Status{
		consistency.StatusPassed,
		consistency.StatusWarning,
		consistency.StatusError,
		consistency.StatusSkipped,
	} {
		if n := report.CountByStatus(status); n > 0 {
			validationChecksTotal.WithLabelValues(string(status)).Add(float64(n))
		}
	}

	span.SetAttributes(
		attribute.Int("checks.total", summary.TotalChecks),
		attribute.Int("checks.errors", summary.TotalErrors),
		attribute.Int("checks.warnings", summary.TotalWarnings),
		attribute.Bool("is_valid", summary.IsValid),
	)

	s.logger.InfoContext(ctx, "analysis validated",
		slog.Int("checks", summary.TotalChecks),
		slog.Int("errors", summary.TotalErrors),
		slog.Int("warnings", summary.TotalWarnings),
		slog.Bool("is_valid", summary.IsValid))
}
