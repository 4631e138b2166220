// internal/routing/slug.go
//
// Slug and path helpers.
//
// • MakeSlug(name) ─ turns a business name into a tenant slug restricted to
//   ASCII a-z, 0-9 and "-", short enough to be one DNS label.
// • ValidSlug(s) ─ reports whether s can be used as a tenant slug.
// • BuildPath(parent, slug) ─ joins path segments with a single "/" and
//   guarantees exactly one leading slash.  Used for the link prefix of
//   path-addressed sites.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one "-".  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading and trailing "-".
// 4. Cut to 63 bytes, the DNS label limit, and trim a dangling "-".
// 5. If the result is empty or reserved, return "site".
//
// Notes
// -----
// • Reserved slugs collide with first-level routes ("/d/…", "/api/…") or
//   with well-known subdomains.

package routing

import (
	"strings"
)

// MaxSlugLen is the DNS label limit.
const MaxSlugLen = 63

var reserved = map[string]bool{
	"d": true, "api": true, "admin": true, "auth": true, "login": true,
	"assets": true, "static": true, "metrics": true, "healthz": true,
	"www": true, "mail": true, "app": true,
}

// Reserved reports whether s is kept back from tenants.
func Reserved(s string) bool { return reserved[s] }

// MakeSlug converts name → lower-kebab ASCII.
func MakeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	if slug == "" || Reserved(slug) {
		return "site"
	}
	return slug
}

// ValidSlug reports whether s is already in MakeSlug's output form and is
// not reserved.
func ValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLen || Reserved(s) {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	prevDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevDash = false
		case c == '-':
			if prevDash {
				return false
			}
			prevDash = true
		default:
			return false
		}
	}
	return true
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
