package consistency

import (
	"fmt"
	"log/slog"
	"math"
)

// Validator recomputes reported derived metrics from raw inputs and flags
// disagreements beyond a configurable tolerance
type Validator struct {
	tolerance float64
	ranges    map[string]MetricRange
	logger    *slog.Logger
}

// NewValidator creates a validator with the given hard tolerance.
// A non-positive tolerance falls back to DefaultTolerance.
func NewValidator(tolerance float64, logger *slog.Logger) *Validator {
	if tolerance <= 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		tolerance: tolerance,
		ranges:    defaultRanges(),
		logger:    logger,
	}
}

// Tolerance returns the validator's default hard tolerance
func (v *Validator) Tolerance() float64 {
	return v.tolerance
}

// SetRange overrides or adds the plausible range for a metric type
func (v *Validator) SetRange(metricType string, r MetricRange) {
	v.ranges[metricType] = r
}

// ValidatePercentChange verifies that reported equals
// (current-previous)/previous*100 within tolerance. Tolerance is in absolute
// percentage points; pass a negative tolerance to use the validator default.
//
// A zero or undefined previous value makes the check inconclusive rather
// than a crash: the result is a skipped check, never a division by zero.
func (v *Validator) ValidatePercentChange(name string, current, previous, reported, tolerance float64) Check {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = v.tolerance
	}

	if previous == 0 || math.IsNaN(previous) {
		return Check{
			CheckName: name,
			Status:    StatusSkipped,
			Message:   "cannot recompute percent change: previous value is zero or undefined",
			Details:   map[string]interface{}{"previous": previous},
		}
	}

	if math.IsNaN(current) || math.IsNaN(reported) {
		return Check{
			CheckName: name,
			Status:    StatusSkipped,
			Message:   "cannot validate percent change: current value or reported change is undefined",
		}
	}

	expected := (current - previous) / previous * 100
	difference := math.Abs(expected - reported)

	details := map[string]interface{}{
		"reported":   reported,
		"expected":   expected,
		"difference": difference,
		"tolerance":  tolerance,
	}

	if difference <= tolerance {
		return Check{
			CheckName: name,
			Status:    StatusPassed,
			Message:   fmt.Sprintf("percent change validated: %.2f%% (expected %.2f%%)", reported, expected),
			Details:   details,
		}
	}

	return Check{
		CheckName: name,
		Status:    StatusError,
		Message: fmt.Sprintf("percent change mismatch: reported %.2f%%, expected %.2f%% (difference %.2f)",
			reported, expected, difference),
		Details: details,
	}
}

// ValidateRange checks that value lies within the plausible range for the
// given metric type. NaN is always invalid. An unknown metric type is
// trivially valid: no range is known, so nothing blocks.
func (v *Validator) ValidateRange(value float64, metricType, context string) (bool, string) {
	r, known := v.ranges[metricType]
	if !known {
		return true, fmt.Sprintf("unknown metric type: %s", metricType)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false, fmt.Sprintf("value is undefined for %s", metricType)
	}

	if !r.Contains(value) {
		msg := fmt.Sprintf("value %.2f for %s is outside expected range [%.2f, %.2f]",
			value, metricType, r.Min, r.Max)
		if context != "" {
			msg += " - " + context
		}
		return false, msg
	}

	return true, fmt.Sprintf("value %.2f for %s is within expected range", value, metricType)
}

// RangeCheck wraps ValidateRange into a report entry
func (v *Validator) RangeCheck(name string, value float64, metricType, context string) Check {
	ok, msg := v.ValidateRange(value, metricType, context)
	status := StatusPassed
	if !ok {
		status = StatusError
	}
	details := map[string]interface{}{"value": value, "metric_type": metricType}
	if r, known := v.ranges[metricType]; known {
		details["min"] = r.Min
		details["max"] = r.Max
	}
	return Check{CheckName: name, Status: status, Message: msg, Details: details}
}

// ValidateHierarchy verifies that an ordered sequence of named values is
// non-decreasing (e.g. M0 <= M1 <= M2 <= M3). Any missing, zero, or negative
// value is an immediate structural error. Otherwise each adjacent pair gets
// its own passed or error check, so a broken link is diagnosable on its own.
func (v *Validator) ValidateHierarchy(checkName string, ordered []MetricSample) *Report {
	report := NewReport()

	for _, s := range ordered {
		if !s.Defined() || s.Value <= 0 {
			report.AddError(checkName,
				fmt.Sprintf("%s is missing, zero, or negative: %v", s.Name, s.Value),
				map[string]interface{}{"name": s.Name, "value": s.Value})
			return report
		}
	}

	for i := 0; i < len(ordered)-1; i++ {
		lo, hi := ordered[i], ordered[i+1]
		if lo.Value > hi.Value {
			report.AddError(checkName,
				fmt.Sprintf("hierarchy violation: %s (%.2f) > %s (%.2f)", lo.Name, lo.Value, hi.Name, hi.Value),
				map[string]interface{}{"lower": lo.Value, "upper": hi.Value,
					"lower_name": lo.Name, "upper_name": hi.Name})
		} else {
			report.AddPassed(checkName,
				fmt.Sprintf("%s (%.2f) <= %s (%.2f)", lo.Name, lo.Value, hi.Name, hi.Value))
		}
	}

	return report
}

// CategoryRule describes the directional expectation one categorical label
// places on its continuous signals. ExpectedSign is +1 when the label
// implies growth, -1 when it implies decline. Hard and Soft are the
// contradiction magnitudes (in signal units) beyond which the label is
// flagged at error and warning severity; a zero threshold disables that
// severity for the rule.
type CategoryRule struct {
	Label        string
	ExpectedSign int
	Hard         float64
	Soft         float64
}

// ValidateCategoryConsistency checks that a categorical label agrees in
// direction with its continuous signals. The primary signal must contradict
// the label's expected sign AND the secondary signal must exceed the rule's
// threshold before anything is flagged; unknown or neutral labels pass
// trivially (consistency is assumed absent evidence otherwise).
func (v *Validator) ValidateCategoryConsistency(checkName, label string, primary, secondary float64, rules []CategoryRule) *Report {
	report := NewReport()

	var rule *CategoryRule
	for i := range rules {
		if rules[i].Label == label {
			rule = &rules[i]
			break
		}
	}

	if rule == nil {
		report.AddPassed(checkName, fmt.Sprintf("label %q has no directional expectation", label))
		return report
	}

	if math.IsNaN(primary) || math.IsNaN(secondary) {
		report.AddSkipped(checkName, fmt.Sprintf("signals for label %q are undefined", label))
		return report
	}

	sign := float64(rule.ExpectedSign)
	primaryContradicts := primary*sign < 0
	contradiction := -sign * secondary

	details := map[string]interface{}{
		"label":     label,
		"primary":   primary,
		"secondary": secondary,
	}

	switch {
	case primaryContradicts && rule.Hard > 0 && contradiction > rule.Hard:
		report.AddError(checkName,
			fmt.Sprintf("label %q strongly contradicted by signals (primary %.2f, secondary %.2f)",
				label, primary, secondary), details)
	case primaryContradicts && rule.Soft > 0 && contradiction > rule.Soft:
		report.AddWarning(checkName,
			fmt.Sprintf("label %q weakly contradicted by signals (primary %.2f, secondary %.2f)",
				label, primary, secondary), details)
	default:
		report.AddPassed(checkName,
			fmt.Sprintf("label %q is consistent with signals (primary %.2f, secondary %.2f)",
				label, primary, secondary))
	}

	return report
}
