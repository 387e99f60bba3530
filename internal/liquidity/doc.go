// Package liquidity implements the global market liquidity analyzers:
// cycle identification and phase positioning, monetary aggregate growth and
// velocity, central bank balance sheet and policy stance analysis, and
// liquidity/asset-price correlation.
//
// Analyzers operate on in-memory Series values; data loading and report
// generation live with the callers. Every analyzer pairs with a Validate
// function that cross-checks its output against recomputation via the
// consistency package.
package liquidity
