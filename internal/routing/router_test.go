package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Example.COM", "example.com"},
		{"  example.com  ", "example.com"},
		{"example.com:8080", "example.com"},
		{"www.example.com", "example.com"},
		{"WWW.Example.com:443", "example.com"},
		{"www.www.example.com", "www.example.com"},
		{"example.com:abc", "example.com:abc"},
		{"[::1]:8080", "[::1]"},
		{"[::1]", "[::1]"},
		{"::1", "::1"},
		{"127.0.0.1:3000", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHost(tt.in))
		})
	}
}

func TestRoute(t *testing.T) {
	const platform = "example.com"

	tests := []struct {
		name string
		host string
		path string
		want Decision
	}{
		{"platform bare", "example.com", "/", Decision{Kind: Pass}},
		{"platform any case and port", "EXAMPLE.com:8443", "/about", Decision{Kind: Pass}},
		{"platform www", "www.example.com", "/", Decision{Kind: Pass}},
		{"subdomain", "acme.example.com", "/about",
			Decision{Kind: RewriteToSlug, Slug: "acme", Path: "/acme/about"}},
		{"subdomain root", "Acme.Example.com", "/",
			Decision{Kind: RewriteToSlug, Slug: "acme", Path: "/acme/"}},
		{"nested subdomain", "sub.sub2.example.com", "/x",
			Decision{Kind: RewriteToSlug, Slug: "sub", Path: "/sub/x"}},
		{"empty slug", ".example.com", "/", Decision{Kind: Pass}},
		{"custom domain", "Shop.Biz:443", "/",
			Decision{Kind: RewriteToHostname, Hostname: "shop.biz", Path: "/d/shop.biz/"}},
		{"custom domain page", "www.shop.biz", "/contact",
			Decision{Kind: RewriteToHostname, Hostname: "shop.biz", Path: "/d/shop.biz/contact"}},
		{"lookalike suffix", "notexample.com", "/",
			Decision{Kind: RewriteToHostname, Hostname: "notexample.com", Path: "/d/notexample.com/"}},
		{"empty host", "", "/", Decision{Kind: Pass}},
		{"localhost", "localhost:3000", "/acme", Decision{Kind: Pass}},
		{"loopback", "127.0.0.1:8080", "/acme", Decision{Kind: Pass}},
		{"vercel preview", "my-branch.vercel.app", "/acme", Decision{Kind: Pass}},
		{"ngrok", "abc.ngrok-free.app", "/acme", Decision{Kind: Pass}},
		{"empty path", "acme.example.com", "",
			Decision{Kind: RewriteToSlug, Slug: "acme", Path: "/acme/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.host, tt.path, platform))
		})
	}
}

func TestRouteBypassIsNeverRewritten(t *testing.T) {
	hosts := []string{"acme.example.com", "shop.biz", "example.com"}
	paths := []string{
		"/_next/static/chunk.js", "/static/app.css", "/assets/sites/1/logo.png",
		"/api/sites/acme", "/admin", "/admin/sites", "/auth/callback", "/login",
		"/d/shop.biz/about", "/metrics", "/healthz",
		"/favicon.ico", "/robots.txt", "/sitemap.xml",
	}

	for _, h := range hosts {
		for _, p := range paths {
			assert.Equal(t, Decision{Kind: Pass}, Route(h, p, "example.com"), "%s%s", h, p)
		}
	}
}

func TestRouteWithoutPlatform(t *testing.T) {
	d := Route("acme.example.com", "/", "")
	assert.Equal(t, RewriteToHostname, d.Kind)
	assert.Equal(t, "/d/acme.example.com/", d.Path)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "slug", RewriteToSlug.String())
	assert.Equal(t, "hostname", RewriteToHostname.String())
}
