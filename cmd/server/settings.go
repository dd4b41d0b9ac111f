package main

import (
	"net/http"

	"github.com/Simplici0/grainexport/internal/settings"
)

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var next settings.Settings
	if err := decodeJSON(w, r, &next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settings.Update(r.Context(), next); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.handleSettingsGet(w, r)
}
