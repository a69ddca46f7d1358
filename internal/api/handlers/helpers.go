package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"site-selection-service/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		reqID, _ := r.Context().Value(obs.RequestIDKey).(string)
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", reqID, r.Method, r.URL.Path, err)
	}
}

// writeError echoes the request id so clients can quote it when reporting failures.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := map[string]string{"error": msg}
	if reqID, _ := r.Context().Value(obs.RequestIDKey).(string); reqID != "" {
		body["req_id"] = reqID
	}
	writeJSON(w, r, status, body)
}
