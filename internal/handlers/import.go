package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/services"
	"github.com/diewo77/viajante/internal/workbook"
)

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	Status       string `json:"status"`
	File         string `json:"arquivo"`
	Bookings     int    `json:"reservas_importadas"`
	Clients      int    `json:"clientes_importados"`
	Destinations int    `json:"destinos_importados"`
	Skipped      int    `json:"linhas_ignoradas"` // blank or repeated keys
}

type ImportHandler struct {
	svc       *services.ImportService
	maxUpload int64
}

// NewImportHandler limits uploads to maxUpload bytes.
func NewImportHandler(svc *services.ImportService, maxUpload int64) *ImportHandler {
	return &ImportHandler{svc: svc, maxUpload: maxUpload}
}

// Import serves POST /importar with the spreadsheet in the multipart field
// "file".
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("Arquivo excede o limite de %d bytes.", tooLarge.Limit))
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", "Falha ao ler o upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", "Nenhum arquivo enviado no campo 'file'.")
		return
	}
	defer file.Close()

	wb, err := workbook.Parse(file)
	var missing *workbook.MissingSheetsError
	switch {
	case errors.As(err, &missing):
		httpx.JSONError(w, http.StatusBadRequest, "missing_sheets",
			fmt.Sprintf("Arquivo Excel inválido. As abas obrigatórias não foram encontradas: %v", missing.Missing))
		return
	case errors.Is(err, workbook.ErrUnreadable):
		httpx.JSONError(w, http.StatusBadRequest, "unreadable_file",
			"Erro ao ler o arquivo Excel. Verifique se é um .xlsx válido. Erro: "+err.Error())
		return
	case err != nil:
		httpx.JSONError(w, http.StatusBadRequest, "unreadable_file", err.Error())
		return
	}

	res, err := h.svc.Replace(r.Context(), wb)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("file", header.Filename).Msg("import failed")
		httpx.JSONError(w, http.StatusInternalServerError, "import_failed",
			"Erro ao processar e salvar os dados: "+err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, ImportResponse{
		Status:       "sucesso",
		File:         header.Filename,
		Bookings:     res.Bookings,
		Clients:      res.Clients,
		Destinations: res.Destinations,
		Skipped:      res.Skipped,
	})
}
