// Package exporter writes analysis results and consistency reports to
// CSV and Excel files.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Writes consistency reports and analyzer output as CSV
// files under the reports directory.
//
// WorkbookExporter: Builds a multi-sheet Excel workbook for a full
// analysis run; its counterpart ExcelAuditor re-opens generated
// workbooks and flags formula-level problems.
package exporter
