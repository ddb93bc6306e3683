package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/analytics"
	"github.com/diewo77/viajante/internal/logging"
)

// AnalyticsHandler serves one endpoint per analytical query.
type AnalyticsHandler struct {
	svc *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) MonthlyRollup(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.MonthlyRollup)
}

func (h *AnalyticsHandler) TopMarginDestinations(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.TopMarginDestinations)
}

func (h *AnalyticsHandler) DestinationProfitability(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.DestinationProfitability)
}

func (h *AnalyticsHandler) RevenueByChannel(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.RevenueByChannel)
}

func (h *AnalyticsHandler) SemesterGrowth(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.SemesterGrowth)
}

func (h *AnalyticsHandler) LoyaltyScores(w http.ResponseWriter, r *http.Request) {
	respondRows(w, r, h.svc.LoyaltyScores)
}

func respondRows[T any](w http.ResponseWriter, r *http.Request, query func(context.Context) ([]T, error)) {
	rows, err := query(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("analytics query failed")
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
