package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cardstream/cnab-import/internal/logging"
)

// Identity headers populated by the upstream gateway after authentication.
const (
	headerUserID   = "X-User-Id"
	headerUserName = "X-User-Name"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport accepts a multipart CNAB file upload and runs one import.
// The outcome is returned as JSON: 200 on commit, 422 when the import
// aborted, with the error list either way.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	userName := r.Header.Get(headerUserName)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing caller identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %d byte limit", s.cfg.Import.MaxFileSize))
			return
		}
		writeError(w, r, http.StatusBadRequest, "missing form file \"file\"")
		return
	}
	defer file.Close()

	outcome := s.service.Import(r.Context(), file, header.Size, header.Filename, userID, userName)

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, outcome)
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}

// writeError writes a JSON error response and logs it server-side.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)
	writeJSON(w, r, status, map[string]string{"error": message})
}
