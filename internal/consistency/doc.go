// Package consistency cross-checks derived liquidity metrics against
// independent recomputation from raw inputs.
//
// Every analyzer in this toolkit computes its numbers once; this package is
// the only place where a reported value is verified against a second,
// independent derivation. Checks cover percent-change arithmetic, plausible
// value ranges, monetary aggregate hierarchy ordering, and agreement between
// categorical regime labels (cycle phase, policy stance) and the continuous
// signals they summarize.
//
// Data-quality problems never escape as panics or errors: a zero denominator,
// a NaN input, or a malformed sequence becomes a skipped or error-status
// check entry in the report, because the whole point of the package is to
// characterize data quality. Only programming-contract violations may panic,
// and the report runner recovers those at the boundary of a single check.
//
// All operations are pure functions over their inputs and produce a fresh
// Report per run, so the package is safe for concurrent use without
// coordination.
package consistency
