package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/field-reports/internal/constants"
)

// sanitizeForLog strips line breaks from user supplied values before they
// reach a log line.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAttachment streams the file at path as a download named filename.
// Before the headers are sent a failure becomes a JSON 500; afterwards it is
// only returned.
func respondAttachment(w http.ResponseWriter, path, contentType, filename string) error {
	f, err := os.Open(path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, constants.ExportFailedMessage)
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, constants.ExportFailedMessage)
		return err
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, f)
	return err
}

// HealthCheck answers liveness probes.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
