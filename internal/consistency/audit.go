package consistency

import "context"

// WorkbookAuditor inspects a generated workbook for formula-level problems
// (division by zero, formula mismatches). The capability is injected by the
// caller: the validator itself owns no file-format dependency, and callers
// that never produce workbooks pass the no-op default instead of relying on
// import-time availability flags.
type WorkbookAuditor interface {
	AuditWorkbook(ctx context.Context, path string) *Report
}

// NoopWorkbookAuditor is the default auditor for callers without workbook
// output. It records the audit as skipped rather than silently omitting it.
type NoopWorkbookAuditor struct{}

// AuditWorkbook records a skipped check
func (NoopWorkbookAuditor) AuditWorkbook(_ context.Context, path string) *Report {
	report := NewReport()
	report.AddSkipped("workbook_audit", "workbook auditing not configured, skipping "+path)
	return report
}
