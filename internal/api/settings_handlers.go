// Handlers for reading and updating the settings document.

package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Settings().Snapshot())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	// Start from the current snapshot so a partial payload only changes
	// the keys it carries.
	candidate := s.app.Settings().Snapshot()
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := s.app.Settings().Update(candidate); err != nil {
		// Validation failures carry the template error message so the UI
		// can show it inline next to the field.
		RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, s.app.Settings().Snapshot())
}
