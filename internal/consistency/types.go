package consistency

import (
	"fmt"
	"math"
	"time"
)

// Status classifies the outcome of a single consistency check
type Status string

const (
	// StatusPassed means recomputation agrees within tolerance
	StatusPassed Status = "passed"
	// StatusWarning means recomputation disagrees beyond a soft threshold,
	// but not enough to call the data wrong
	StatusWarning Status = "warning"
	// StatusError means recomputation disagrees beyond the hard tolerance,
	// or a structural invariant is violated
	StatusError Status = "error"
	// StatusSkipped means the check could not be performed at all (zero
	// denominator, insufficient history) and carries no pass/fail judgement
	StatusSkipped Status = "skipped"
)

// Check is the outcome of comparing a reported metric against an
// independently recomputed expected value
type Check struct {
	CheckName string                 `json:"check_name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// MetricSample is a named numeric value derived from source data.
// A NaN Value encodes "absent/undefined".
type MetricSample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Defined reports whether the sample carries a usable numeric value
func (ms MetricSample) Defined() bool {
	return !math.IsNaN(ms.Value) && !math.IsInf(ms.Value, 0)
}

// Report is an ordered collection of checks accumulated during one
// validation pass. It is created fresh per run and never mutated after the
// run completes; validity is always derived from the check list, never
// cached.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Checks      []Check   `json:"checks"`
}

// NewReport creates an empty report stamped with the current time
func NewReport() *Report {
	return &Report{GeneratedAt: time.Now()}
}

// Add appends a check to the report
func (r *Report) Add(c Check) {
	r.Checks = append(r.Checks, c)
}

// AddPassed records a passed check
func (r *Report) AddPassed(name, message string) {
	r.Add(Check{CheckName: name, Status: StatusPassed, Message: message})
}

// AddWarning records a warning check with structured context
func (r *Report) AddWarning(name, message string, details map[string]interface{}) {
	r.Add(Check{CheckName: name, Status: StatusWarning, Message: message, Details: details})
}

// AddError records an error check with structured context
func (r *Report) AddError(name, message string, details map[string]interface{}) {
	r.Add(Check{CheckName: name, Status: StatusError, Message: message, Details: details})
}

// AddSkipped records a check that could not be performed
func (r *Report) AddSkipped(name, message string) {
	r.Add(Check{CheckName: name, Status: StatusSkipped, Message: message})
}

// Merge appends all checks from other, preserving their order
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Checks = append(r.Checks, other.Checks...)
}

// IsValid reports whether no check carries error status. Skipped checks
// carry no judgement and never affect validity.
func (r *Report) IsValid() bool {
	for _, c := range r.Checks {
		if c.Status == StatusError {
			return false
		}
	}
	return true
}

// CountByStatus returns the number of checks with the given status
func (r *Report) CountByStatus(status Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Summary contains aggregate counts for one validation run
type Summary struct {
	IsValid       bool `json:"is_valid"`
	TotalChecks   int  `json:"total_checks"`
	TotalPassed   int  `json:"total_passed"`
	TotalWarnings int  `json:"total_warnings"`
	TotalErrors   int  `json:"total_errors"`
	TotalSkipped  int  `json:"total_skipped"`
}

// Summarize computes aggregate counts over the report
func (r *Report) Summarize() Summary {
	return Summary{
		IsValid:       r.IsValid(),
		TotalChecks:   len(r.Checks),
		TotalPassed:   r.CountByStatus(StatusPassed),
		TotalWarnings: r.CountByStatus(StatusWarning),
		TotalErrors:   r.CountByStatus(StatusError),
		TotalSkipped:  r.CountByStatus(StatusSkipped),
	}
}

// String returns a one-line summary suitable for logging
func (s Summary) String() string {
	return fmt.Sprintf("valid=%t checks=%d passed=%d warnings=%d errors=%d skipped=%d",
		s.IsValid, s.TotalChecks, s.TotalPassed, s.TotalWarnings, s.TotalErrors, s.TotalSkipped)
}

// MetricRange is a plausible (min, max) interval for one metric type
type MetricRange struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the closed interval
func (mr MetricRange) Contains(v float64) bool {
	return v >= mr.Min && v <= mr.Max
}

// Default tolerances. Tolerances are absolute percentage points, not
// relative fractions: a tolerance of 0.01 allows a 0.01-point discrepancy
// between a reported 10.00% and a recomputed 10.01%, not a 1% relative gap.
const (
	// DefaultTolerance is the hard tolerance for recomputed comparisons
	DefaultTolerance = 0.01
	// SoftTolerance is the looser threshold for consistency checks that
	// compare two legitimately different derivations (e.g. YoY vs
	// compounded MoM, where compounding introduces drift)
	SoftTolerance = 5.0
	// MinPeriodsForYoY is the history needed to recompute a year-over-year
	// figure from monthly observations
	MinPeriodsForYoY = 13
	// TrendPeriods is the lookback used for recent-trend agreement checks
	TrendPeriods = 6
)

// defaultRanges holds plausible ranges keyed by metric type. Growth and
// percent-change bounds are generous by design; cycle length reflects the
// observed 50-75 month global liquidity periodicity.
func defaultRanges() map[string]MetricRange {
	return map[string]MetricRange{
		"growth_rate":         {Min: -50.0, Max: 100.0},
		"cycle_length_months": {Min: 50.0, Max: 75.0},
		"velocity":            {Min: 0.5, Max: 15.0},
		"correlation":         {Min: -1.0, Max: 1.0},
		"percent_change":      {Min: -100.0, Max: 500.0},
	}
}
