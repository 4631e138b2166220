// internal/routing/middleware.go
//
// HTTP middleware that applies Route decisions.
//
// Context
// -------
// The middleware must run before chi dispatches, i.e. it is installed with
// r.Use on the top-level router.  chi reads r.URL.RawPath, then r.URL.Path,
// when it routes, so rewriting both here is enough for the tenant routes to
// match.
//
// The Decision is stored on the request context.  Handlers use it to build
// navigation links: a rewritten request was addressed without the slug or
// "/d/<host>" prefix, so its links must be too.
//
// Notes
// -----
// • RequestURI is rewritten as well so access logs show the internal path.
// • The query string is untouched.

package routing

import (
	"context"
	"net/http"

	"github.com/yanizio/sitekit/internal/metrics"
	"go.uber.org/zap"
)

type ctxKey struct{}

// WithDecision returns a copy of ctx carrying d.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext returns the Decision recorded by Middleware.  Requests that
// never passed through the middleware report Pass.
func FromContext(ctx context.Context) Decision {
	if d, ok := ctx.Value(ctxKey{}).(Decision); ok {
		return d
	}
	return Decision{Kind: Pass}
}

// Middleware rewrites tenant requests to their path-based form.
func Middleware(platformDomain string, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Route(r.Host, r.URL.Path, platformDomain)
			metrics.RouteDecisions.WithLabelValues(d.Kind.String()).Inc()

			if d.Kind != Pass {
				log.Debug("route rewrite",
					zap.String("host", r.Host),
					zap.String("from", r.URL.Path),
					zap.String("to", d.Path),
					zap.Stringer("kind", d.Kind),
				)
				r.URL.Path = d.Path
				r.URL.RawPath = ""
				r.RequestURI = r.URL.RequestURI()
			}

			next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), d)))
		})
	}
}
