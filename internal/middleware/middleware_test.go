package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestForceHTTPS(t *testing.T) {
	h := ForceHTTPS(ok)

	cases := []struct {
		name     string
		url      string
		setup    func(*http.Request)
		code     int
		location string
	}{
		{"plain redirects", "http://acme.sitekit.app/about?x=1", nil, http.StatusPermanentRedirect, "https://acme.sitekit.app/about?x=1"},
		{"proxy https passes", "http://acme.com/", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, http.StatusOK, ""},
		{"tls passes", "https://acme.com/", func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, http.StatusOK, ""},
		{"localhost passes", "http://localhost:8080/acme", nil, http.StatusOK, ""},
		{"loopback passes", "http://127.0.0.1:8080/", nil, http.StatusOK, ""},
		{"dev subdomain passes", "http://acme.localhost/", nil, http.StatusOK, ""},
		{"probe passes", "http://acme.com/healthz", nil, http.StatusOK, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, c.url, nil)
			if c.setup != nil {
				c.setup(req)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != c.code {
				t.Fatalf("code %d, want %d", rec.Code, c.code)
			}
			if loc := rec.Header().Get("Location"); loc != c.location {
				t.Fatalf("location %q, want %q", loc, c.location)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Write([]byte("body"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://acme.com/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	h.ServeHTTP(rec, req)

	res := rec.Result()
	for _, k := range []string{"Content-Security-Policy", "X-Content-Type-Options", "Referrer-Policy", "Permissions-Policy", "Strict-Transport-Security"} {
		if res.Header.Get(k) == "" {
			t.Errorf("missing %s", k)
		}
	}
	if got := res.Header.Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("handler override lost: %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}
