package consistency

import (
	"context"
	"fmt"
)

// NamedCheck pairs a check identifier with the function that evaluates it.
// The function returns the report fragment for that check; it may record
// any number of entries.
type NamedCheck struct {
	Name string
	Fn   func() *Report
}

// RunReport evaluates the given checks in order and collects their results
// into a single report. Order is the order checks were requested, so
// identical inputs always produce identical ordered check lists.
//
// A panic inside one check must not abort the whole report: it is recovered
// and converted into an error-status entry named for that check. With
// failFast set, evaluation stops after the first check that contributes an
// error-status entry.
func (v *Validator) RunReport(ctx context.Context, checks []NamedCheck, failFast bool) *Report {
	report := NewReport()

	for _, nc := range checks {
		if err := ctx.Err(); err != nil {
			report.AddSkipped(nc.Name, fmt.Sprintf("validation cancelled: %v", err))
			continue
		}

		fragment := v.runOne(nc)
		report.Merge(fragment)

		if failFast && !fragment.IsValid() {
			v.logger.DebugContext(ctx, "stopping validation after failed check",
				"check", nc.Name)
			break
		}
	}

	summary := report.Summarize()
	v.logger.InfoContext(ctx, "validation run complete",
		"checks", summary.TotalChecks,
		"errors", summary.TotalErrors,
		"warnings", summary.TotalWarnings,
		"is_valid", summary.IsValid,
	)

	return report
}

// runOne evaluates a single named check, downgrading panics to error
// entries so one bad input cannot take down the run
func (v *Validator) runOne(nc NamedCheck) (fragment *Report) {
	defer func() {
		if r := recover(); r != nil {
			fragment = NewReport()
			fragment.AddError(nc.Name,
				fmt.Sprintf("check %q panicked: %v", nc.Name, r),
				map[string]interface{}{"panic": fmt.Sprint(r)})
		}
	}()

	fragment = nc.Fn()
	if fragment == nil {
		fragment = NewReport()
		fragment.AddSkipped(nc.Name, "check produced no result")
	}
	return fragment
}
