package api

import (
	"encoding/json"
	"net/http"

	"github.com/banshee-data/beambeam/internal/monitoring"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func badRequest(w http.ResponseWriter, msg string)    { writeError(w, http.StatusBadRequest, msg) }
func notFound(w http.ResponseWriter, msg string)      { writeError(w, http.StatusNotFound, msg) }
func internalError(w http.ResponseWriter, msg string) { writeError(w, http.StatusInternalServerError, msg) }
