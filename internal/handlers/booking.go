package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// List serves GET /reservas/listar?mes=&cliente=&destino=&canal=&uf=.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.BookingFilter{
		Month:       q.Get("mes"),
		Client:      q.Get("cliente"),
		Destination: q.Get("destino"),
		Channel:     q.Get("canal"),
		Region:      q.Get("uf"),
	}
	rows, err := h.svc.List(r.Context(), filter)
	var ferr *services.FilterError
	if errors.As(err, &ferr) {
		httpx.JSONFieldError(w, http.StatusBadRequest, "invalid_month", "Formato de mês inválido. Use YYYY-MM.", ferr.Violations)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list bookings failed")
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
