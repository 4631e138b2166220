package resolve

import (
	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/site"
)

// SiteData is everything a renderer needs for one tenant.  It is built
// fresh for each resolution and must be treated as read-only; concurrent
// callers collapsed onto one resolution share the same value.
type SiteData struct {
	Site    site.Site   `json:"site"`
	Profile Profile     `json:"profile"`
	Pages   Pages       `json:"pages"`
	Extras  []ExtraLink `json:"extras"`
}

// Profile is the public projection of the business profile.
type Profile struct {
	BusinessName string            `json:"businessName"`
	Tagline      string            `json:"tagline"`
	Description  string            `json:"description"`
	Address      string            `json:"address"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Messaging    string            `json:"messaging"`
	Social       map[string]string `json:"social"`
	Logo         *Logo             `json:"logo,omitempty"`
}

// Logo is the resolved logo asset.  Colors are empty when no palette was
// stored for it.
type Logo struct {
	Path     string   `json:"path"`
	URL      string   `json:"url"`
	Dominant string   `json:"dominant,omitempty"`
	Accent   string   `json:"accent,omitempty"`
	Palette  []string `json:"palette,omitempty"`
}

// Pages holds the three fixed pages.  Every field is always populated,
// from stored content or from defaults.
type Pages struct {
	Home    pagedata.PageData `json:"home"`
	About   pagedata.PageData `json:"about"`
	Contact pagedata.PageData `json:"contact"`
}

// Get returns the page for key.
func (p *Pages) Get(key pagedata.PageKey) (pagedata.PageData, bool) {
	switch key {
	case pagedata.Home:
		return p.Home, true
	case pagedata.About:
		return p.About, true
	case pagedata.Contact:
		return p.Contact, true
	}
	return pagedata.PageData{}, false
}

func (p *Pages) set(key pagedata.PageKey, pd pagedata.PageData) {
	switch key {
	case pagedata.Home:
		p.Home = pd
	case pagedata.About:
		p.About = pd
	case pagedata.Contact:
		p.Contact = pd
	}
}

// ExtraLink names a published extra page for navigation.
type ExtraLink struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}
