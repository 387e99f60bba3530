// Package http implements HTTP request handlers for the liquidity
// analysis web service. It provides a thin layer between HTTP transport
// and business logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Invalid request data",
//	    "status": 400,
//	    "detail": "tolerance must not be negative",
//	    "instance": "/api/validation/percent-change"
//	}
//
// # Testing
//
// Handlers are tested using httptest with real services over temp-dir
// fixtures, verifying both success payloads and problem responses.
package http
