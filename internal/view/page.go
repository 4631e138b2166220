package view

import (
	"strings"
	"time"

	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/palette"
	"github.com/yanizio/sitekit/internal/resolve"
)

// PageView is the data every layout executes with.
type PageView struct {
	Site     *resolve.SiteData
	Key      string
	Title    string
	Page     pagedata.PageData
	Sections []SectionView
	Head     *Head
	Brand    Brand
	BasePath string
	HomeHref string
	Nav      []NavLink
	Year     int
}

// SectionView is one renderable section.  Profile rides along for kinds
// that show business details (contact_card).
type SectionView struct {
	Kind    string
	Data    pagedata.Section
	Profile *resolve.Profile
}

// Brand holds the colors a layout paints with.
type Brand struct {
	Dominant string
	Accent   string
	Palette  []string
}

// NavLink is one navigation entry.
type NavLink struct {
	Key    string
	Title  string
	Href   string
	Active bool
}

// Page describes what to render.  BasePath prefixes every internal link:
// empty when the request arrived on the tenant's own host, "/<slug>" or
// "/d/<host>" when it was addressed by path.
type Page struct {
	Key       string
	Title     string
	Data      pagedata.PageData
	BasePath  string
	Canonical string
}

var fixedTitles = map[pagedata.PageKey]string{
	pagedata.Home:    "Home",
	pagedata.About:   "About",
	pagedata.Contact: "Contact",
}

// NewPageView assembles the view for one page of sd.
func NewPageView(sd *resolve.SiteData, p Page) *PageView {
	base := strings.TrimRight(p.BasePath, "/")
	title := p.Title
	if title == "" {
		title = fixedTitles[pagedata.PageKey(p.Key)]
	}

	v := &PageView{
		Site:     sd,
		Key:      p.Key,
		Title:    title,
		Page:     p.Data,
		Head:     PageHead(sd.Profile, p.Key, title, p.Data.SEO, p.Canonical),
		Brand:    brandFor(sd.Profile.Logo),
		BasePath: base,
		HomeHref: base + "/",
		Year:     time.Now().Year(),
	}

	for _, s := range pagedata.Renderable(p.Data.Sections) {
		v.Sections = append(v.Sections, SectionView{
			Kind:    string(s.Kind()),
			Data:    s,
			Profile: &sd.Profile,
		})
	}

	for _, k := range pagedata.PageKeys() {
		v.Nav = append(v.Nav, NavLink{
			Key:    string(k),
			Title:  fixedTitles[k],
			Href:   pageHref(base, string(k)),
			Active: p.Key == string(k),
		})
	}
	for _, x := range sd.Extras {
		v.Nav = append(v.Nav, NavLink{
			Key:    x.Key,
			Title:  x.Title,
			Href:   pageHref(base, x.Key),
			Active: p.Key == x.Key,
		})
	}
	return v
}

func pageHref(base, key string) string {
	if key == string(pagedata.Home) {
		return base + "/"
	}
	return base + "/" + key
}

// brandFor uses the logo palette when one was extracted.
func brandFor(logo *resolve.Logo) Brand {
	if logo != nil && logo.Dominant != "" {
		accent := logo.Accent
		if accent == "" {
			accent = logo.Dominant
		}
		return Brand{Dominant: logo.Dominant, Accent: accent, Palette: logo.Palette}
	}
	fb := palette.Fallback()
	return Brand{Dominant: fb.Dominant, Accent: fb.Accent, Palette: fb.Palette}
}
