package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/resolve"
	"github.com/yanizio/sitekit/internal/routing"
)

// apiSite returns the SiteData of a published site for the inline editor.
func (h *handlers) apiSite(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !routing.ValidSlug(slug) {
		writeJSONError(w, http.StatusNotFound)
		return
	}
	sd, err := h.res.BySlug(r.Context(), slug)
	if err != nil {
		h.apiFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sd)
}

// apiPage returns one page's PageData.
func (h *handlers) apiPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !routing.ValidSlug(slug) {
		writeJSONError(w, http.StatusNotFound)
		return
	}
	sd, err := h.res.BySlug(r.Context(), slug)
	if err != nil {
		h.apiFail(w, r, err)
		return
	}
	pd, _, err := h.pageData(r.Context(), sd, chi.URLParam(r, "page"))
	if err != nil {
		h.apiFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pd)
}

func (h *handlers) apiFail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, resolve.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound)
		return
	}
	h.log.Error("api request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSONError(w, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int) {
	writeJSON(w, code, map[string]string{"error": http.StatusText(code)})
}
