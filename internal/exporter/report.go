package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gmlcli/internal/consistency"
	"gmlcli/internal/liquidity"
)

// ReportExporter writes consistency reports and analyzer output as CSV
// files under the reports directory
type ReportExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates a report exporter rooted at reportsDir
func NewReportExporter(reportsDir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{csv: NewCSVWriter(reportsDir), logger: logger}
}

// ExportChecks writes the report's check list to a CSV file. Details maps
// are JSON-encoded into a single column so nothing structured is lost.
func (e *ReportExporter) ExportChecks(report *consistency.Report, filePath string) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	records := make([][]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		details := ""
		if len(check.Details) > 0 {
			encoded, err := json.Marshal(check.Details)
			if err != nil {
				return fmt.Errorf("failed to encode details for %s: %w", check.CheckName, err)
			}
			details = string(encoded)
		}
		records = append(records, []string{
			check.CheckName,
			string(check.Status),
			check.Message,
			details,
		})
	}

	summary := report.Summarize()
	e.logger.Info("exporting consistency report",
		slog.String("file_path", filePath),
		slog.Int("checks", summary.TotalChecks),
		slog.Bool("is_valid", summary.IsValid))

	return e.csv.WriteSimpleCSV(filePath,
		[]string{"check_name", "status", "message", "details"}, records)
}

// ExportSummary writes the one-row summary of a report
func (e *ReportExporter) ExportSummary(report *consistency.Report, filePath string) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	s := report.Summarize()
	return e.csv.WriteSimpleCSV(filePath,
		[]string{"generated_at", "is_valid", "total_checks", "passed", "warnings", "errors", "skipped"},
		[][]string{{
			report.GeneratedAt.Format(time.RFC3339),
			formatBool(s.IsValid),
			formatInt(s.TotalChecks),
			formatInt(s.TotalPassed),
			formatInt(s.TotalWarnings),
			formatInt(s.TotalErrors),
			formatInt(s.TotalSkipped),
		}})
}

// ExportAggregates writes one row per monetary aggregate
func (e *ReportExporter) ExportAggregates(analysis *liquidity.AggregatesAnalysis, filePath string) error {
	if analysis == nil {
		return fmt.Errorf("nil aggregates analysis")
	}

	names := make([]string, 0, len(analysis.Aggregates))
	for name := range analysis.Aggregates {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([][]string, 0, len(names))
	for _, name := range names {
		m := analysis.Aggregates[name]
		records = append(records, []string{
			name,
			formatFloat(m.CurrentValue),
			formatFloat(m.CurrentYoYGrowth),
			formatFloat(m.CurrentMoMGrowth),
			formatFloat(m.CurrentQoQGrowth),
			formatFloat(m.AverageYoYGrowth),
			formatFloat(m.RecentTrend6M),
			formatFloat(m.PeakValue),
			formatFloat(m.TroughValue),
			formatFloat(m.CurrentVelocity),
			formatFloat(m.VelocityChangeYoY),
			formatInt(m.DataPoints),
		})
	}

	return e.csv.WriteSimpleCSV(filePath, []string{
		"aggregate", "current_value", "yoy_growth", "mom_growth", "qoq_growth",
		"avg_yoy_growth", "trend_6m", "peak", "trough",
		"velocity", "velocity_change_yoy", "data_points",
	}, records)
}

// ExportCycles writes identified cycles plus one trailing row describing
// the current phase
func (e *ReportExporter) ExportCycles(analysis *liquidity.CycleAnalysis, filePath string) error {
	if analysis == nil {
		return fmt.Errorf("nil cycle analysis")
	}

	records := make([][]string, 0, len(analysis.Cycles))
	for _, c := range analysis.Cycles {
		records = append(records, []string{
			formatInt(c.Number),
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			formatFloat(c.LengthMonths),
			formatFloat(c.PeakValue),
			formatFloat(c.TroughValue),
			formatFloat(c.Amplitude),
		})
	}

	if err := e.csv.WriteSimpleCSV(filePath, []string{
		"cycle", "start_date", "end_date", "length_months", "peak", "trough", "amplitude",
	}, records); err != nil {
		return err
	}

	phase := analysis.CurrentPhase
	return e.csv.AppendToCSV(filePath, [][]string{
		{},
		{"current_phase", phase.Phase,
			"completion_percent", formatFloat(phase.CycleCompletionPercent),
			"trend_percent", formatFloat(phase.RecentTrendPercent),
			"confidence", phase.Confidence},
	})
}

// ExportBalanceSheets writes one row per central bank plus the aggregate
func (e *ReportExporter) ExportBalanceSheets(analysis *liquidity.BalanceSheetAnalysis, filePath string) error {
	if analysis == nil {
		return fmt.Errorf("nil balance sheet analysis")
	}

	banks := make([]string, 0, len(analysis.ByBank))
	for bank := range analysis.ByBank {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	records := make([][]string, 0, len(banks)+1)
	for _, bank := range banks {
		b := analysis.ByBank[bank]
		records = append(records, []string{
			bank,
			formatFloat(b.CurrentAssets),
			formatFloat(b.PeakAssets),
			b.PeakDate.Format("2006-01-02"),
			formatFloat(b.YoYChangePercent),
			b.CurrentPolicy,
			b.PolicyStance,
			formatInt(b.DataPoints),
		})
	}
	records = append(records, []string{
		"TOTAL",
		formatFloat(analysis.Aggregate.TotalAssets),
		"", "",
		formatFloat(analysis.Aggregate.YoYChangePercent),
		"", "",
		formatInt(analysis.Aggregate.BanksAnalyzed),
	})

	return e.csv.WriteSimpleCSV(filePath, []string{
		"bank", "current_assets", "peak_assets", "peak_date",
		"yoy_change_percent", "current_policy", "policy_stance", "data_points",
	}, records)
}

// ExportCorrelations writes one row per asset class
func (e *ReportExporter) ExportCorrelations(correlations map[string]*liquidity.AssetCorrelation, filePath string) error {
	if len(correlations) == 0 {
		return fmt.Errorf("no correlations to export")
	}

	classes := make([]string, 0, len(correlations))
	for class := range correlations {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	records := make([][]string, 0, len(classes))
	for _, class := range classes {
		c := correlations[class]
		if c == nil {
			continue
		}
		records = append(records, []string{
			class,
			formatFloat4(c.LevelsCorrelation),
			formatFloat4(c.ReturnsCorrelation),
			formatFloat4(c.RollingCorrelation12),
			formatBool(c.IsLiquidityDriven),
			c.Sensitivity,
			formatInt(c.DataPoints),
		})
	}

	return e.csv.WriteSimpleCSV(filePath, []string{
		"asset_class", "levels_correlation", "returns_correlation",
		"rolling_correlation_12", "liquidity_driven", "sensitivity", "data_points",
	}, records)
}
