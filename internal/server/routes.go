// internal/server/routes.go
//
// Router assembly for cmd/web.
//
// Context
// -------
// Middleware order matters here:
//
//  1. RequestID and RealIP first, so every later layer sees both.
//  2. requestinfo.Enrich and AccessLog before routing, so the access log
//     shows the path the visitor asked for.
//  3. Recoverer inside the access log, so a panic is logged as a 500.
//  4. ForceHTTPS (optional) and Security headers.
//  5. routing.Middleware rewrites tenant hosts to /<slug>/… or /d/<host>/…,
//     then StripSlashes folds "/acme/" onto "/acme".
//
// Routes
// ------
//   - GET /                         platform landing
//   - GET /{slug}[/{page}]          tenant pages by slug
//   - GET /d/{host}[/{page}]        tenant pages by custom domain
//   - GET /api/sites/{slug}         SiteData JSON
//   - GET /api/sites/{slug}/pages/{page}
//   - GET /healthz, /metrics
//   - GET /static/themes/*          template assets
//   - GET /assets/*                 local storage blobs (local driver only)

package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	sitemw "github.com/yanizio/sitekit/internal/middleware"
	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/requestinfo"
	"github.com/yanizio/sitekit/internal/resolve"
	"github.com/yanizio/sitekit/internal/routing"
	"github.com/yanizio/sitekit/internal/theme"
	"github.com/yanizio/sitekit/internal/view"
)

// Resolver is the read side the handlers need.
type Resolver interface {
	BySlug(ctx context.Context, slug string) (*resolve.SiteData, error)
	ByHostname(ctx context.Context, hostname string) (*resolve.SiteData, error)
	ExtraPage(ctx context.Context, sd *resolve.SiteData, key string) (pagedata.PageData, error)
}

// Deps are the collaborators Routes wires together.
type Deps struct {
	Resolver       Resolver
	Themes         *theme.Registry
	PlatformDomain string
	ForceHTTPS     bool
	AssetDir       string                          // served at /assets/ when set
	Geo            requestinfo.GeoDB               // nil disables lookups
	Ping           func(ctx context.Context) error // readiness; nil means always ready
	Log            *zap.Logger
}

// Routes builds the top-level handler.
func Routes(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.L()
	}
	h := &handlers{
		res:      d.Resolver,
		render:   view.NewRenderer(d.Themes, log),
		platform: d.PlatformDomain,
		ping:     d.Ping,
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestinfo.Enrich(d.Geo))
	r.Use(requestinfo.AccessLog(log))
	r.Use(middleware.Recoverer)
	if d.ForceHTTPS {
		r.Use(sitemw.ForceHTTPS)
	}
	r.Use(sitemw.Security)
	r.Use(routing.Middleware(d.PlatformDomain, log))
	r.Use(middleware.StripSlashes)

	r.NotFound(notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(theme.AssetPrefix+"*",
		http.StripPrefix(strings.TrimSuffix(theme.AssetPrefix, "/"), d.Themes.AssetHandler()))
	if d.AssetDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets", noDirs(http.FileServer(http.Dir(d.AssetDir)))))
	}

	r.Route("/api/sites/{slug}", func(r chi.Router) {
		r.Get("/", h.apiSite)
		r.Get("/pages/{page}", h.apiPage)
	})

	r.Get("/", h.landing)
	r.Get("/d/{host}", h.hostPage)
	r.Get("/d/{host}/{page}", h.hostPage)
	r.Get("/{slug}", h.slugPage)
	r.Get("/{slug}/{page}", h.slugPage)

	return r
}

// noDirs hides directory listings.
func noDirs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// notFound is the one 404 every miss gets, whatever the cause.
func notFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "404 page not found", http.StatusNotFound)
}
