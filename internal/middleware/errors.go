package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"gmlcli/internal/infrastructure"
)

// Problem represents an RFC 7807 problem details object. The error
// handling inside API handlers lives in internal/errors; this type covers
// responses produced before a handler runs (router fallbacks, recovery,
// rate limiting).
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	var title, problemType string

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		problemType = "/errors/bad-request"
	case http.StatusNotFound:
		title = "Not Found"
		problemType = "/errors/not-found"
	case http.StatusMethodNotAllowed:
		title = "Method Not Allowed"
		problemType = "/errors/method-not-allowed"
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = "/errors/rate-limit-exceeded"
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = "/errors/internal-server-error"
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = "/errors/service-unavailable"
	case http.StatusGatewayTimeout:
		title = "Gateway Timeout"
		problemType = "/errors/gateway-timeout"
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// NotFoundHandler is the router fallback for unknown paths
func NotFoundHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger.WarnContext(ctx, "route not found",
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeProblem(w, ProblemFromStatus(http.StatusNotFound,
			"The requested resource does not exist", infrastructure.GetTraceID(ctx)))
	}
}

// MethodNotAllowedHandler is the router fallback for known paths with the
// wrong verb
func MethodNotAllowedHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger.WarnContext(ctx, "method not allowed",
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeProblem(w, ProblemFromStatus(http.StatusMethodNotAllowed,
			"Method "+r.Method+" is not allowed for this resource", infrastructure.GetTraceID(ctx)))
	}
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}
