package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/resolve"
	"github.com/yanizio/sitekit/internal/routing"
	"github.com/yanizio/sitekit/internal/theme"
	"github.com/yanizio/sitekit/internal/view"
)

type handlers struct {
	res      Resolver
	render   *view.Renderer
	platform string
	ping     func(ctx context.Context) error
	log      *zap.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.log.Warn("healthz: not ready", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *handlers) landing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("sitekit: small business sites on " + h.platform + "\n"))
}

func (h *handlers) slugPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !routing.ValidSlug(slug) || routing.Reserved(slug) {
		notFound(w, r)
		return
	}
	sd, err := h.res.BySlug(r.Context(), slug)

	base := ""
	if routing.FromContext(r.Context()).Kind == routing.Pass {
		base = routing.BuildPath("", slug)
	}
	h.page(w, r, sd, err, base, "https://"+slug+"."+h.platform)
}

func (h *handlers) hostPage(w http.ResponseWriter, r *http.Request) {
	host := routing.NormalizeHost(chi.URLParam(r, "host"))
	if host == "" {
		notFound(w, r)
		return
	}
	sd, err := h.res.ByHostname(r.Context(), host)

	base := ""
	if routing.FromContext(r.Context()).Kind == routing.Pass {
		base = routing.BuildPath("d", host)
	}
	h.page(w, r, sd, err, base, "https://"+host)
}

// page renders one page of a resolved site.  origin is the site's public
// scheme and host, used for the canonical link.
func (h *handlers) page(w http.ResponseWriter, r *http.Request, sd *resolve.SiteData, err error, base, origin string) {
	if err != nil {
		h.fail(w, r, err)
		return
	}

	key := chi.URLParam(r, "page")
	pd, title, err := h.pageData(r.Context(), sd, key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if key == "" {
		key = string(pagedata.Home)
	}

	canonical := origin + "/"
	if key != string(pagedata.Home) {
		canonical += key
	}
	v := view.NewPageView(sd, view.Page{
		Key:       key,
		Title:     title,
		Data:      pd,
		BasePath:  base,
		Canonical: canonical,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.render.Render(w, sd.Site.TemplateKey, v); err != nil {
		if errors.Is(err, theme.ErrUnknownTemplate) {
			h.log.Warn("page: unknown template",
				zap.String("site", sd.Site.ID),
				zap.String("template", sd.Site.TemplateKey))
			notFound(w, r)
			return
		}
		h.fail(w, r, err)
	}
}

// pageData maps a URL segment to content: empty or "home" is the home
// page, the other fixed keys map directly, anything else is an extra page.
func (h *handlers) pageData(ctx context.Context, sd *resolve.SiteData, key string) (pagedata.PageData, string, error) {
	if key == "" {
		key = string(pagedata.Home)
	}
	if pd, ok := sd.Pages.Get(pagedata.PageKey(key)); ok {
		return pd, "", nil
	}
	if !routing.ValidSlug(key) {
		return pagedata.PageData{}, "", resolve.ErrNotFound
	}
	pd, err := h.res.ExtraPage(ctx, sd, key)
	if err != nil {
		return pagedata.PageData{}, "", err
	}
	for _, x := range sd.Extras {
		if x.Key == key {
			return pd, x.Title, nil
		}
	}
	return pd, key, nil
}

// fail maps not-found to the generic 404 and everything else to a bare 500.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, resolve.ErrNotFound) {
		notFound(w, r)
		return
	}
	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
