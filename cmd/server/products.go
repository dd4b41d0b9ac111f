package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleProductDraft returns an empty product line pre-filled with the default margins.
func (s *server) handleProductDraft(w http.ResponseWriter, r *http.Request) {
	product, err := s.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	current, err := s.settings.Get(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, current.DraftLine(product.ID))
}
