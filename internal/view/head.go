// internal/view/head.go
//
// Head collects everything that should appear inside a page's <head>
// element.  It is scoped to a single render call.  The page builder pushes
// SEO tags into it, then the template set's layout decides where to emit
// each slice.
//
// Features
// --------
//   - SetTitle           – single <title> tag (last call wins).
//   - Meta, Link         – arbitrary tags with deduplication.
//   - JSONLD             – structured data wrapped in
//     <script type="application/ld+json">…</script>.
//   - Render helpers     – concat methods that return template.HTML.
//
// Notes
// -----
// • Values reach the tags through HTMLEscapeString; only the builder itself
//   assembles markup.
// • JSON-LD is produced by encoding/json, which escapes <, >, and & so a
//   stray "</script>" in profile text cannot close the block.
package view

import (
	"encoding/json"
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/resolve"
)

// Head is one page's <head> content.
type Head struct {
	mu sync.Mutex

	title       string
	description string

	metas  []string
	links  []string
	jsonLD []string

	seen map[string]struct{}
}

func NewHead() *Head {
	return &Head{seen: make(map[string]struct{})}
}

// PageHead builds the head for one page.  SEO fields win; the title falls
// back to "<page> | <business>" (just the business on home), and the
// description to the tagline, then the profile description.  canonical may
// be empty.
func PageHead(p resolve.Profile, key, pageTitle string, seo pagedata.SEO, canonical string) *Head {
	h := NewHead()

	title := strings.TrimSpace(seo.Title)
	if title == "" {
		title = fallbackTitle(p.BusinessName, key, pageTitle)
	}
	h.SetTitle(title)

	desc := firstNonEmpty(seo.Description, p.Tagline, p.Description)
	h.description = desc
	if desc != "" {
		h.Meta(metaTag("name", "description", desc))
	}

	h.Meta(metaTag("property", "og:type", "website"))
	if title != "" {
		h.Meta(metaTag("property", "og:title", title))
	}
	if desc != "" {
		h.Meta(metaTag("property", "og:description", desc))
	}
	if p.BusinessName != "" {
		h.Meta(metaTag("property", "og:site_name", p.BusinessName))
	}
	if p.Logo != nil && p.Logo.URL != "" {
		h.Meta(metaTag("property", "og:image", p.Logo.URL))
	}
	if canonical != "" {
		h.Meta(metaTag("property", "og:url", canonical))
		h.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(canonical) + `">`)
	}
	if p.BusinessName != "" {
		if js, err := businessJSONLD(p, canonical); err == nil {
			h.JSONLD(js)
		}
	}
	return h
}

func fallbackTitle(business, key, pageTitle string) string {
	pageTitle = strings.TrimSpace(pageTitle)
	switch {
	case business == "":
		return pageTitle
	case key == string(pagedata.Home) || pageTitle == "":
		return business
	default:
		return pageTitle + " | " + business
	}
}

// ------------------------------------------------------------------
// Single-value helpers
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (h *Head) SetTitle(t string) {
	h.mu.Lock()
	h.title = t
	h.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (h *Head) Title() template.HTML {
	if h.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(h.title) + "</title>")
}

// TitleText is the raw title, for tests and logs.
func (h *Head) TitleText() string { return h.title }

// Description is the resolved meta description.
func (h *Head) Description() string { return h.description }

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

func (h *Head) Meta(tag string)  { h.add("meta:"+tag, &h.metas, tag) }
func (h *Head) Link(tag string)  { h.add("link:"+tag, &h.links, tag) }
func (h *Head) JSONLD(js string) { h.add("jsonld:"+js, &h.jsonLD, js) }

func (h *Head) add(key string, tgt *[]string, tag string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.seen[key]; dup {
		return
	}
	h.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from layouts
// ------------------------------------------------------------------

func (h *Head) Metas() template.HTML { return concat(h.metas) }
func (h *Head) Links() template.HTML { return concat(h.links) }

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (h *Head) JSON() template.HTML {
	if len(h.jsonLD) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, js := range h.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// concat joins pre-escaped tags without a separator.
func concat(sl []string) template.HTML {
	return template.HTML(strings.Join(sl, ""))
}

func metaTag(attr, name, content string) string {
	return `<meta ` + attr + `="` + name + `" content="` + template.HTMLEscapeString(content) + `">`
}

func businessJSONLD(p resolve.Profile, url string) (string, error) {
	doc := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     p.BusinessName,
	}
	set := func(k, v string) {
		if v != "" {
			doc[k] = v
		}
	}
	set("description", firstNonEmpty(p.Description, p.Tagline))
	set("telephone", p.Phone)
	set("email", p.Email)
	set("address", p.Address)
	set("url", url)
	if p.Logo != nil {
		set("logo", p.Logo.URL)
	}
	if len(p.Social) > 0 {
		same := make([]string, 0, len(p.Social))
		for _, href := range p.Social {
			same = append(same, href)
		}
		sort.Strings(same)
		doc["sameAs"] = same
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
