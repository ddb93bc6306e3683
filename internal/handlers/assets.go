package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/logging"
)

// DashboardFileName is the download name of the dashboard asset.
const DashboardFileName = "Analise_Viajante.pbix"

type AssetHandler struct {
	dashboardPath string
}

func NewAssetHandler(dashboardPath string) *AssetHandler {
	return &AssetHandler{dashboardPath: dashboardPath}
}

// Dashboard serves GET /download/dashboard_pbix.
func (h *AssetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.dashboardPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", "Arquivo .pbix não encontrado no servidor.")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("path", h.dashboardPath).Msg("open dashboard")
		httpx.JSONError(w, http.StatusInternalServerError, "asset_unavailable", err.Error())
		return
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && st.IsDir() {
		httpx.JSONError(w, http.StatusNotFound, "not_found", "Arquivo .pbix não encontrado no servidor.")
		return
	}
	if err := httpx.Attachment(w, "application/octet-stream", DashboardFileName, f); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("write dashboard")
	}
}
