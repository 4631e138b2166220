// internal/routing/middleware_test.go
//
// Unit tests for the Domain Router middleware.
//
// Context
// -------
// The middleware rewrites r.URL.Path before chi dispatches.  These tests
// verify three behaviours:
//
//   • Platform subdomain          → path gains the slug prefix
//   • Custom domain               → path gains the "/d/<host>" prefix
//   • Bypass path or local host   → path untouched
//
// Each sub-test wraps a recording handler with Middleware, fires an
// httptest request, and asserts the path seen downstream plus the Decision
// stored on the context.

package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, host, target string) (string, Decision) {
	t.Helper()

	var gotPath string
	var gotDecision Decision
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDecision = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	rr := httptest.NewRecorder()

	Middleware("sitekit.app", nil)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	return gotPath, gotDecision
}

func TestMiddleware_Subdomain(t *testing.T) {
	path, d := serve(t, "acme.sitekit.app", "/about?x=1")
	if path != "/acme/about" {
		t.Fatalf("path = %q, want /acme/about", path)
	}
	if d.Kind != RewriteToSlug || d.Slug != "acme" {
		t.Fatalf("decision = %+v", d)
	}
}

func TestMiddleware_CustomDomain(t *testing.T) {
	path, d := serve(t, "WWW.Acme.com:443", "/")
	if path != "/d/acme.com/" {
		t.Fatalf("path = %q, want /d/acme.com/", path)
	}
	if d.Kind != RewriteToHostname || d.Hostname != "acme.com" {
		t.Fatalf("decision = %+v", d)
	}
}

func TestMiddleware_PassNoMutation(t *testing.T) {
	for _, tc := range []struct{ host, path string }{
		{"acme.sitekit.app", "/api/sites/acme"},
		{"acme.com", "/favicon.ico"},
		{"localhost:8080", "/acme/about"},
		{"sitekit.app", "/"},
	} {
		path, d := serve(t, tc.host, tc.path)
		if path != tc.path {
			t.Fatalf("%s%s: path mutated to %q", tc.host, tc.path, path)
		}
		if d.Kind != Pass {
			t.Fatalf("%s%s: kind = %v, want pass", tc.host, tc.path, d.Kind)
		}
	}
}

// chi must route on the rewritten path when the middleware is installed
// with Use.
func TestMiddleware_ChiDispatch(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("sitekit.app", nil))

	var slug, page string
	r.Get("/{slug}/{page}", func(w http.ResponseWriter, r *http.Request) {
		slug = chi.URLParam(r, "slug")
		page = chi.URLParam(r, "page")
	})

	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	req.Host = "acme.sitekit.app"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if slug != "acme" || page != "contact" {
		t.Fatalf("params = %q/%q, want acme/contact", slug, page)
	}
}
