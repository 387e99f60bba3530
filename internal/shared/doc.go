// Package shared holds cross-cutting helpers that belong to no single
// domain package. Currently this is only testutil, the in-memory slog
// handler used by package tests to assert on structured log output.
package shared
