package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gmlcli/internal/config"
	"gmlcli/internal/consistency"
	"gmlcli/internal/exporter"
	"gmlcli/internal/infrastructure"
	"gmlcli/internal/services"
)

func main() {
	dataDir := flag.String("data", "", "directory containing input CSV series (defaults to the configured data dir)")
	outDir := flag.String("out", "", "output directory for report files (defaults to the configured reports dir)")
	indexName := flag.String("index", "liquidity_index", "liquidity index series name")
	aggregatesPrefix := flag.String("aggregates", "aggregate", "file prefix for monetary aggregate series (M0..M3)")
	balanceSheetsPrefix := flag.String("balance-sheets", "balance_sheet", "file prefix for central bank balance sheet series")
	assetsPrefix := flag.String("assets", "asset", "file prefix for asset price series")
	gdpName := flag.String("gdp", "gdp", "GDP series name for velocity calculations")
	writeWorkbook := flag.Bool("xlsx", true, "write the multi-sheet Excel workbook and audit it")
	failFast := flag.Bool("fail-fast", false, "stop validation after the first error check")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.Validation.FailFast = *failFast

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *dataDir == "" {
		*dataDir = cfg.GetDataDir()
	}
	if *outDir == "" {
		*outDir = cfg.GetReportsDir()
	}

	dataService := services.NewDataService(*dataDir, logger)
	marketData, err := loadMarketData(ctx, dataService, *indexName, *aggregatesPrefix, *balanceSheetsPrefix, *assetsPrefix, *gdpName)
	if err != nil {
		slog.Error("Failed to load market data", "error", err)
		os.Exit(1)
	}

	analysisService := services.NewAnalysisService(cfg.Validation, logger)
	analysis, err := analysisService.RunFull(ctx, *marketData)
	if err != nil {
		slog.Error("Analysis failed", "error", err)
		os.Exit(1)
	}

	validationService := services.NewValidationService(cfg.Validation, logger)
	report := validationService.ValidateAnalysis(ctx, analysis, *marketData)

	if err := exportReports(analysis, report, *outDir, logger); err != nil {
		slog.Error("Failed to export reports", "error", err)
		os.Exit(1)
	}

	if *writeWorkbook {
		auditReport, err := exportAndAuditWorkbook(ctx, analysis, report, *outDir, logger)
		if err != nil {
			slog.Error("Failed to write workbook", "error", err)
			os.Exit(1)
		}
		report.Merge(auditReport)
	}

	summary := report.Summarize()
	fmt.Println(summary.String())

	if !summary.IsValid {
		os.Exit(1)
	}
}

// loadMarketData assembles the analysis input from CSV series in the data
// directory. Absent series are skipped; their analysis sections are
// simply omitted downstream.
func loadMarketData(ctx context.Context, data *services.DataService, indexName, aggregatesPrefix, balanceSheetsPrefix, assetsPrefix, gdpName string) (*services.MarketData, error) {
	md := &services.MarketData{}

	index, err := data.LoadSeries(ctx, indexName)
	switch {
	case err == nil:
		md.LiquidityIndex = index
	case absent(err):
		slog.Warn("Liquidity index not found, skipping cycle and correlation analysis", "series", indexName)
	default:
		return nil, fmt.Errorf("load liquidity index: %w", err)
	}

	aggregates, err := data.LoadGroup(ctx, aggregatesPrefix)
	switch {
	case err == nil:
		md.Aggregates = aggregates
	case absent(err):
		slog.Warn("No monetary aggregate series found", "prefix", aggregatesPrefix)
	default:
		return nil, fmt.Errorf("load aggregates: %w", err)
	}

	gdp, err := data.LoadSeries(ctx, gdpName)
	switch {
	case err == nil:
		md.GDP = gdp
	case absent(err):
		slog.Warn("GDP series not found, velocity will be undefined", "series", gdpName)
	default:
		return nil, fmt.Errorf("load gdp: %w", err)
	}

	balanceSheets, err := data.LoadGroup(ctx, balanceSheetsPrefix)
	switch {
	case err == nil:
		md.BalanceSheets = balanceSheets
	case absent(err):
		slog.Warn("No balance sheet series found", "prefix", balanceSheetsPrefix)
	default:
		return nil, fmt.Errorf("load balance sheets: %w", err)
	}

	assets, err := data.LoadGroup(ctx, assetsPrefix)
	switch {
	case err == nil:
		md.AssetPrices = assets
	case absent(err):
		slog.Warn("No asset price series found", "prefix", assetsPrefix)
	default:
		return nil, fmt.Errorf("load asset prices: %w", err)
	}

	if len(md.LiquidityIndex) == 0 && len(md.Aggregates) == 0 &&
		len(md.BalanceSheets) == 0 && len(md.AssetPrices) == 0 {
		return nil, fmt.Errorf("no input series found in data directory")
	}

	return md, nil
}

func absent(err error) bool {
	return errors.Is(err, services.ErrSeriesNotFound) || errors.Is(err, services.ErrNoSeriesMatched)
}

// exportReports writes the consistency report and per-section CSV files
func exportReports(analysis *services.MarketAnalysis, report *consistency.Report, outDir string, logger *slog.Logger) error {
	csvExporter := exporter.NewReportExporter(outDir, logger)

	if err := csvExporter.ExportChecks(report, "consistency_checks.csv"); err != nil {
		return err
	}
	if err := csvExporter.ExportSummary(report, "consistency_summary.csv"); err != nil {
		return err
	}

	if analysis.Aggregates != nil {
		if err := csvExporter.ExportAggregates(analysis.Aggregates, "aggregates.csv"); err != nil {
			return err
		}
	}
	if analysis.Cycles != nil {
		if err := csvExporter.ExportCycles(analysis.Cycles, "cycles.csv"); err != nil {
			return err
		}
	}
	if analysis.BalanceSheets != nil {
		if err := csvExporter.ExportBalanceSheets(analysis.BalanceSheets, "balance_sheets.csv"); err != nil {
			return err
		}
	}
	if len(analysis.Correlations) > 0 {
		if err := csvExporter.ExportCorrelations(analysis.Correlations, "correlations.csv"); err != nil {
			return err
		}
	}
	return nil
}

// exportAndAuditWorkbook writes the Excel workbook and re-opens it with
// the auditor so formula problems surface in the final report
func exportAndAuditWorkbook(ctx context.Context, analysis *services.MarketAnalysis, report *consistency.Report, outDir string, logger *slog.Logger) (*consistency.Report, error) {
	workbookExporter := exporter.NewWorkbookExporter(outDir, logger)

	input := exporter.WorkbookInput{
		Report:         report,
		Cycles:         analysis.Cycles,
		Aggregates:     analysis.Aggregates,
		CreditCreation: analysis.CreditCreation,
		BalanceSheets:  analysis.BalanceSheets,
		Correlations:   analysis.Correlations,
	}
	if err := workbookExporter.WriteWorkbook("liquidity_report.xlsx", input); err != nil {
		return nil, err
	}

	var auditor consistency.WorkbookAuditor = exporter.NewExcelAuditor(logger)
	return auditor.AuditWorkbook(ctx, filepath.Join(outDir, "liquidity_report.xlsx")), nil
}
