// Package httpx holds the JSON and download response helpers shared by the
// handlers.
package httpx

import (
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrorResponse is the body of every error reply. Detail carries the human
// readable message.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Fields any    `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorResponse{Error: code, Detail: detail})
}

// JSONFieldError is JSONError with per-field violations attached.
func JSONFieldError(w http.ResponseWriter, status int, code, detail string, fields any) {
	JSON(w, status, ErrorResponse{Error: code, Detail: detail, Fields: fields})
}

// Attachment sends body as a download named filename.
func Attachment(w http.ResponseWriter, contentType, filename string, body io.Reader) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, err := io.Copy(w, body)
	return err
}
