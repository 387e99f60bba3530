package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "gmlcli/internal/errors"
	"gmlcli/internal/services"
)

// AnalysisHandler exposes the liquidity analyzers over HTTP
type AnalysisHandler struct {
	service *services.AnalysisService
	errors  *apierrors.ErrorHandler
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		errors:  errorHandler,
		logger:  logger.With(slog.String("handler", "analysis")),
	}
}

// Routes sets up the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/cycles", h.Cycles)
	r.Post("/aggregates", h.Aggregates)
	r.Post("/balance-sheets", h.BalanceSheets)
	r.Post("/correlations", h.Correlations)
	r.Post("/full", h.Full)
	return r
}

// Cycles handles POST /api/analysis/cycles
func (h *AnalysisHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeMarketData(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeCycles(r.Context(), data.LiquidityIndex)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}

// Aggregates handles POST /api/analysis/aggregates
func (h *AnalysisHandler) Aggregates(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeMarketData(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeAggregates(r.Context(), data.Aggregates, data.GDP)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}

// BalanceSheets handles POST /api/analysis/balance-sheets
func (h *AnalysisHandler) BalanceSheets(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeMarketData(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeBalanceSheets(r.Context(), data.BalanceSheets)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}

// Correlations handles POST /api/analysis/correlations
func (h *AnalysisHandler) Correlations(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeMarketData(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeCorrelations(r.Context(), data.LiquidityIndex, data.AssetPrices)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}

// Full handles POST /api/analysis/full
func (h *AnalysisHandler) Full(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeMarketData(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.RunFull(r.Context(), data)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}

// decodeMarketData parses and validates the shared request shape; on
// failure it writes the problem response and reports false
func (h *AnalysisHandler) decodeMarketData(w http.ResponseWriter, r *http.Request) (services.MarketData, bool) {
	var req MarketDataRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return services.MarketData{}, false
	}
	if err := validateStruct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return services.MarketData{}, false
	}

	data, err := req.toMarketData()
	if err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return services.MarketData{}, false
	}
	return data, true
}
