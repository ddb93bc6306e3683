package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/report"
)

type ReportHandler struct {
	renderer *report.Renderer
}

func NewReportHandler(renderer *report.Renderer) *ReportHandler {
	return &ReportHandler{renderer: renderer}
}

// SQLReport serves GET /generate/sql-report. Query failures are part of the
// document, so the response is always 200.
func (h *ReportHandler) SQLReport(w http.ResponseWriter, r *http.Request) {
	doc := h.renderer.Render(r.Context())
	if err := httpx.Attachment(w, "text/plain; charset=utf-8", report.FileName, strings.NewReader(doc)); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("write report")
	}
}
