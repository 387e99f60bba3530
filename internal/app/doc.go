// Package app wires the application together: configuration loading,
// logger initialization, service construction, chi router setup, and the
// HTTP server lifecycle with graceful shutdown.
//
// The entry point is NewApplication followed by Run, which blocks until
// SIGINT/SIGTERM and then drains in-flight requests within the configured
// shutdown timeout.
package app
