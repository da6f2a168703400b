package api

import (
	"encoding/json"
	"net/http"
)

// RespondWithJSON marshals payload and writes it with the given status
// code. A payload that cannot be marshaled turns into a plain 500; that
// only happens for programming errors like a channel in the payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// RespondWithError writes the message in the error envelope every handler
// uses: {"error": "..."}.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}
