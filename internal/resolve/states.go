// internal/resolve/states.go
//
// Resolution state machine.
//
//	fetchDomain? → fetchSite → fetchProfile → fetchAsset → fetchPages
//	                                                        ↓ error
//	                                                   fallbackPages
//	                                                        ↓
//	                                           fetchExtras → assemble → done
//
// Each state is a function that does one read and returns the next state.
// A nil next state ends the run; a failing state sets m.err through fail()
// and returns nil, which is the single terminal not-found state.  The names
// of visited states are kept in m.trace for the debug log.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/metrics"
	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/palette"
	"github.com/yanizio/sitekit/internal/site"
)

const (
	viaSlug     = "slug"
	viaHostname = "hostname"
)

type stateFn func(*machine) stateFn

type machine struct {
	ctx context.Context
	r   *Resolver
	via string
	key string

	siteID  string
	site    *site.Site
	profile *site.Profile
	logo    *Logo
	rows    []site.Page
	extras  []ExtraLink

	out   *SiteData
	err   error
	trace []string
}

func (m *machine) run(start stateFn) {
	for state := start; state != nil; {
		state = state(m)
	}
	m.r.log.Debug("resolve trace",
		zap.String("via", m.via),
		zap.String("key", m.key),
		zap.Strings("states", m.trace),
		zap.Bool("found", m.err == nil),
	)
}

func (m *machine) enter(name string) { m.trace = append(m.trace, name) }

func (m *machine) fail(err error) stateFn {
	m.enter("notFound")
	m.r.logFailure(m.via, m.key, err)
	m.err = ErrNotFound
	return nil
}

func fixedKeys() []string {
	keys := make([]string, 0, 3)
	for _, k := range pagedata.PageKeys() {
		keys = append(keys, string(k))
	}
	return keys
}

func stateFetchDomain(m *machine) stateFn {
	m.enter("fetchDomain")
	d, err := m.r.store.ActiveDomain(m.ctx, m.key)
	if err != nil {
		return m.fail(err)
	}
	m.siteID = d.SiteID
	return stateFetchSite
}

func stateFetchSite(m *machine) stateFn {
	m.enter("fetchSite")
	var (
		st  *site.Site
		err error
	)
	if m.siteID != "" {
		st, err = m.r.store.PublishedSiteByID(m.ctx, m.siteID)
	} else {
		st, err = m.r.store.PublishedSiteBySlug(m.ctx, m.key)
	}
	if err != nil {
		return m.fail(err)
	}
	m.site = st
	return stateFetchProfile
}

func stateFetchProfile(m *machine) stateFn {
	m.enter("fetchProfile")
	p, err := m.r.store.ProfileBySite(m.ctx, m.site.ID)
	if err != nil {
		return m.fail(err)
	}
	m.profile = p
	return stateFetchAsset
}

// stateFetchAsset never fails the run: a missing or foreign asset simply
// leaves the logo out.
func stateFetchAsset(m *machine) stateFn {
	if m.profile.LogoAssetID == nil || *m.profile.LogoAssetID == "" {
		return stateFetchPages
	}
	m.enter("fetchAsset")

	a, err := m.r.store.AssetByID(m.ctx, *m.profile.LogoAssetID)
	if err != nil {
		m.r.log.Warn("logo asset unavailable",
			zap.String("site", m.site.ID), zap.String("asset", *m.profile.LogoAssetID), zap.Error(err))
		return stateFetchPages
	}
	if a.SiteID != m.site.ID {
		m.r.log.Warn("logo asset belongs to another site",
			zap.String("site", m.site.ID), zap.String("asset", a.ID))
		return stateFetchPages
	}

	logo := &Logo{Path: a.Path, URL: m.r.assetURL(a.Path)}
	var meta struct {
		Palette *palette.Result `json:"palette"`
	}
	if err := json.Unmarshal(a.Metadata, &meta); err == nil && meta.Palette != nil {
		logo.Dominant = meta.Palette.Dominant
		logo.Accent = meta.Palette.Accent
		logo.Palette = meta.Palette.Palette
	}
	m.logo = logo
	return stateFetchPages
}

func stateFetchPages(m *machine) stateFn {
	m.enter("fetchPages")
	rows, err := m.r.store.PublishedPages(m.ctx, m.site.ID, fixedKeys())
	if err != nil {
		m.r.log.Warn("page read failed, trying minimal projection",
			zap.String("site", m.site.ID), zap.Error(err))
		return stateFallbackPages
	}
	m.rows = rows
	return stateFetchExtras
}

// stateFallbackPages confirms that at least one fixed page is published.
// Content is then served entirely from defaults.
func stateFallbackPages(m *machine) stateFn {
	m.enter("fallbackPages")
	metrics.ResolveFallbackTotal.Inc()

	refs, err := m.r.store.PublishedPageKeys(m.ctx, m.site.ID, fixedKeys())
	if err != nil {
		return m.fail(err)
	}
	if len(refs) == 0 {
		return m.fail(fmt.Errorf("site %s has no published pages", m.site.ID))
	}
	m.rows = nil
	return stateFetchExtras
}

// stateFetchExtras lists published extra pages for navigation.  Errors only
// cost the links.
func stateFetchExtras(m *machine) stateFn {
	m.enter("fetchExtras")
	refs, err := m.r.store.ExtraPageKeys(m.ctx, m.site.ID)
	if err != nil {
		m.r.log.Warn("extra page list unavailable", zap.String("site", m.site.ID), zap.Error(err))
		return stateAssemble
	}
	for _, ref := range refs {
		m.extras = append(m.extras, ExtraLink{Key: ref.Key, Title: ref.Title})
	}
	return stateAssemble
}

func stateAssemble(m *machine) stateFn {
	m.enter("assemble")

	byKey := make(map[pagedata.PageKey]site.Page, len(m.rows))
	for _, row := range m.rows {
		byKey[pagedata.PageKey(row.Key)] = row
	}

	var pages Pages
	for _, key := range pagedata.PageKeys() {
		pages.set(key, m.page(key, byKey))
	}

	extras := m.extras
	if extras == nil {
		extras = []ExtraLink{}
	}

	m.out = &SiteData{
		Site: *m.site,
		Profile: Profile{
			BusinessName: m.profile.BusinessName,
			Tagline:      m.profile.Tagline,
			Description:  m.profile.Description,
			Address:      m.profile.Address,
			Phone:        m.profile.Phone,
			Email:        m.profile.Email,
			Messaging:    m.profile.Messaging,
			Social:       m.profile.SocialLinks(),
			Logo:         m.logo,
		},
		Pages:  pages,
		Extras: extras,
	}
	return nil
}

// page returns the stored document for key, or its default when the row is
// missing or its data fails validation.
func (m *machine) page(key pagedata.PageKey, byKey map[pagedata.PageKey]site.Page) pagedata.PageData {
	row, ok := byKey[key]
	if ok {
		pd, err := pagedata.Parse(row.Data)
		if err == nil {
			return pd
		}
		m.r.log.Warn("page data invalid, using default",
			zap.String("site", m.site.ID), zap.String("page", string(key)), zap.Error(err))
	}
	metrics.ResolveDefaultPagesTotal.WithLabelValues(string(key)).Inc()
	return pagedata.DefaultFor(key)
}
