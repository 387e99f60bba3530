package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gmlcli/internal/consistency"
	apierrors "gmlcli/internal/errors"
	"gmlcli/internal/services"
)

// ValidationHandler exposes consistency checks over HTTP
type ValidationHandler struct {
	validation *services.ValidationService
	analysis   *services.AnalysisService
	errors     *apierrors.ErrorHandler
	logger     *slog.Logger
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(validation *services.ValidationService, analysis *services.AnalysisService, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		validation: validation,
		analysis:   analysis,
		errors:     errorHandler,
		logger:     logger.With(slog.String("handler", "validation")),
	}
}

// Routes sets up the validation routes
func (h *ValidationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/percent-change", h.PercentChange)
	r.Post("/range", h.Range)
	r.Post("/hierarchy", h.Hierarchy)
	r.Post("/report", h.Report)
	return r
}

// PercentChange handles POST /api/validation/percent-change
func (h *ValidationHandler) PercentChange(w http.ResponseWriter, r *http.Request) {
	var req PercentChangeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = "percent_change"
	}
	tolerance := -1.0 // configured default unless the caller sets one
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	check := h.validation.ValidatePercentChange(name, *req.Current, *req.Previous, *req.Reported, tolerance)
	render.JSON(w, r, check)
}

// Range handles POST /api/validation/range
func (h *ValidationHandler) Range(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = req.MetricType + "_range"
	}

	check := h.validation.ValidateRange(name, *req.Value, req.MetricType, req.Context)
	render.JSON(w, r, check)
}

// Hierarchy handles POST /api/validation/hierarchy
func (h *ValidationHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	var req HierarchyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = "hierarchy"
	}

	samples := make([]consistency.MetricSample, len(req.Values))
	for i, v := range req.Values {
		samples[i] = consistency.MetricSample{Name: v.Name}
		if v.Value != nil {
			samples[i].Value = *v.Value
		}
	}

	report := h.validation.ValidateHierarchy(name, samples)
	render.JSON(w, r, reportResponse(nil, report))
}

// Report handles POST /api/validation/report: runs the full analysis over
// the posted series and cross-validates its output
func (h *ValidationHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req MarketDataRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	data, err := req.toMarketData()
	if err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	analysis, err := h.analysis.RunFull(r.Context(), data)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	report := h.validation.ValidateAnalysis(r.Context(), analysis, data)
	render.JSON(w, r, reportResponse(analysis, report))
}

// ReportResponse pairs analyzer output with its consistency report
type ReportResponse struct {
	Analysis *services.MarketAnalysis `json:"analysis,omitempty"`
	Checks   []consistency.Check      `json:"checks"`
	Summary  consistency.Summary      `json:"summary"`
}

func reportResponse(analysis *services.MarketAnalysis, report *consistency.Report) ReportResponse {
	return ReportResponse{
		Analysis: analysis,
		Checks:   report.Checks,
		Summary:  report.Summarize(),
	}
}
