// internal/routing/router.go
//
// Domain Router: decide how a request reaches its tenant.
//
// Context
// -------
// Tenants are reachable three ways.  Path-based ("/acme/about") works on any
// host and is what local development and preview deployments use.  Platform
// subdomains ("acme.sitekit.app/about") and verified custom domains
// ("acme.com/about") are rewritten internally to "/acme/about" and
// "/d/acme.com/about" respectively, so the chi routes only ever see the
// path-based forms.
//
// Workflow
// --------
//  1. Bypass table match on the path, then Pass.
//  2. Normalize the host.  Empty, local, or preview hosts Pass.
//  3. The bare platform domain Passes (platform landing and admin entry).
//  4. "<slug>.<platform>" rewrites to the slug form.
//  5. Anything else rewrites to the custom-domain form.
//
// Notes
// -----
// • Route is pure and never fails; unroutable input degrades to Pass.
// • Only the first dot-segment of a platform subdomain is the slug:
//   "a.b.sitekit.app" yields "a".

package routing

import "strings"

// Kind enumerates Domain Router outcomes.
type Kind int

const (
	Pass Kind = iota
	RewriteToSlug
	RewriteToHostname
)

func (k Kind) String() string {
	switch k {
	case RewriteToSlug:
		return "slug"
	case RewriteToHostname:
		return "hostname"
	default:
		return "pass"
	}
}

// Decision is the outcome of Route.  Path is the rewritten request path and
// is empty for Pass.
type Decision struct {
	Kind     Kind
	Slug     string
	Hostname string
	Path     string
}

// BypassPrefixes are path prefixes the router never rewrites.  They are
// served directly regardless of tenant.
var BypassPrefixes = []string{
	"/_next/",
	"/static/",
	"/assets/",
	"/api/",
	"/admin",
	"/auth",
	"/login",
	"/d/",
	"/metrics",
	"/healthz",
}

// BypassFiles are exact well-known paths the router never rewrites.
var BypassFiles = []string{
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
}

// localMarkers and previewSuffixes identify hosts that use path-based
// routing natively.
var (
	localMarkers    = []string{"localhost", "127.0.0.1"}
	previewSuffixes = []string{".vercel.app", ".netlify.app", ".ngrok.io", ".ngrok-free.app"}
)

// Bypassed reports whether path matches the bypass table.
func Bypassed(path string) bool {
	for _, f := range BypassFiles {
		if path == f {
			return true
		}
	}
	for _, p := range BypassPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Route decides how a request for host and path reaches its tenant.
func Route(host, path, platformDomain string) Decision {
	if path == "" {
		path = "/"
	}
	if Bypassed(path) {
		return Decision{Kind: Pass}
	}

	h := NormalizeHost(host)
	if h == "" || isLocal(h) {
		return Decision{Kind: Pass}
	}

	platform := NormalizeHost(platformDomain)
	if platform != "" {
		if h == platform {
			return Decision{Kind: Pass}
		}
		if sub, ok := strings.CutSuffix(h, "."+platform); ok {
			slug, _, _ := strings.Cut(sub, ".")
			if slug == "" {
				return Decision{Kind: Pass}
			}
			return Decision{Kind: RewriteToSlug, Slug: slug, Path: "/" + slug + path}
		}
	}

	return Decision{Kind: RewriteToHostname, Hostname: h, Path: "/d/" + h + path}
}

func isLocal(h string) bool {
	for _, m := range localMarkers {
		if strings.Contains(h, m) {
			return true
		}
	}
	for _, s := range previewSuffixes {
		if strings.HasSuffix(h, s) {
			return true
		}
	}
	return false
}
