// Package services implements the business logic layer between the HTTP
// handlers and the analysis packages. Services load series data, run the
// liquidity analyzers, and cross-validate their output with the
// consistency validator, keeping handlers thin.
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Direct *slog.Logger injection in constructors
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
//	- DataService: loads dated series from CSV files
//	- AnalysisService: runs cycle, aggregate, balance sheet, and
//	  correlation analyzers
//	- ValidationService: cross-checks analyzer output for internal
//	  consistency
//	- HealthService: system health and readiness checks
package services
