// internal/resolve/resolver.go
//
// Site Resolver: slug or hostname → SiteData.
//
// Context
// -------
// Every public page request resolves its tenant here.  The work is a short
// chain of dependent reads (domain?, site, profile, logo asset, pages), each
// needing the previous step's id, so nothing runs in parallel.  The chain is
// an explicit state machine (see states.go) so that the fallback path for
// page reads is visible rather than buried in nested error handling.
//
// Failure policy
// --------------
// Every failure collapses to ErrNotFound at this boundary.  Callers render a
// generic 404 and cannot tell "unknown slug" from "unpublished site", which
// keeps tenant existence private.  Causes are logged, never returned.
//
// Consistency
// -----------
// The reads are independent statements with no shared snapshot.  A page
// published between the site read and the pages read can appear alongside
// a site state from just before.  With human editing cadence this is
// accepted and not corrected.
//
// Notes
// -----
// • There is no cache.  Identical resolutions in flight at the same moment
//   are collapsed with singleflight; the next request reads again.
// • The collapsed run ignores caller cancellation.  A visitor who leaves
//   stops waiting but cannot fail the run for the others.
// • The Store is injected once at process start and shared by reference.

package resolve

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/sitekit/internal/metrics"
	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/routing"
	"github.com/yanizio/sitekit/internal/site"
)

// ErrNotFound is the only error the resolver returns.
var ErrNotFound = errors.New("resolve: site not found")

// Store is the read side of the site tables.  *site.Store satisfies it.
type Store interface {
	PublishedSiteBySlug(ctx context.Context, slug string) (*site.Site, error)
	PublishedSiteByID(ctx context.Context, id string) (*site.Site, error)
	ProfileBySite(ctx context.Context, siteID string) (*site.Profile, error)
	AssetByID(ctx context.Context, id string) (*site.Asset, error)
	PublishedPages(ctx context.Context, siteID string, keys []string) ([]site.Page, error)
	PublishedPageKeys(ctx context.Context, siteID string, keys []string) ([]site.PageRef, error)
	ExtraPageKeys(ctx context.Context, siteID string) ([]site.PageRef, error)
	PublishedExtraPage(ctx context.Context, siteID, key string) (*site.Page, error)
	ActiveDomain(ctx context.Context, hostname string) (*site.Domain, error)
}

// Resolver resolves tenants.  Safe for concurrent use.
type Resolver struct {
	store    Store
	log      *zap.Logger
	assetURL func(path string) string
	sfg      singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.  The default is zap.L() at construction.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithAssetURL sets the function that turns a stored asset path into a
// public URL.  The default returns the path unchanged.
func WithAssetURL(fn func(path string) string) Option {
	return func(r *Resolver) { r.assetURL = fn }
}

// New returns a Resolver reading from store.
func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		log:      zap.L(),
		assetURL: func(p string) string { return p },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// BySlug resolves a tenant by platform slug.
func (r *Resolver) BySlug(ctx context.Context, slug string) (*SiteData, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}
	return r.resolve(ctx, viaSlug, slug, stateFetchSite)
}

// ByHostname resolves a tenant by custom domain.  Only active domains
// resolve.
func (r *Resolver) ByHostname(ctx context.Context, hostname string) (*SiteData, error) {
	h := routing.NormalizeHost(hostname)
	if h == "" {
		return nil, ErrNotFound
	}
	return r.resolve(ctx, viaHostname, h, stateFetchDomain)
}

// ExtraPage returns the published extra page key of an already resolved
// site.  Stored content that fails validation is replaced by the extra-page
// default.
func (r *Resolver) ExtraPage(ctx context.Context, sd *SiteData, key string) (pagedata.PageData, error) {
	if sd == nil || !routing.ValidSlug(key) || pagedata.PageKey(key).Valid() {
		return pagedata.PageData{}, ErrNotFound
	}
	p, err := r.store.PublishedExtraPage(ctx, sd.Site.ID, key)
	if err != nil {
		r.logFailure("extra", key, err)
		return pagedata.PageData{}, ErrNotFound
	}
	pd, err := pagedata.Parse(p.Data)
	if err != nil {
		r.log.Warn("extra page data invalid, using default",
			zap.String("site", sd.Site.ID), zap.String("page", key), zap.Error(err))
		metrics.ResolveDefaultPagesTotal.WithLabelValues("extra").Inc()
		return pagedata.DefaultExtra(p.Title), nil
	}
	return pd, nil
}

func (r *Resolver) resolve(ctx context.Context, via, key string, start stateFn) (*SiteData, error) {
	began := time.Now()
	defer func() {
		metrics.ResolveDuration.WithLabelValues(via).Observe(time.Since(began).Seconds())
	}()

	// The shared run must outlive any one caller, so it drops their
	// cancellation.  Each caller still stops waiting when its own ctx ends.
	runCtx := context.WithoutCancel(ctx)
	ch := r.sfg.DoChan(via+"|"+key, func() (any, error) {
		m := &machine{ctx: runCtx, r: r, via: via, key: key}
		m.run(start)
		if m.err != nil {
			return nil, m.err
		}
		return m.out, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		r.log.Debug("resolve abandoned", zap.String("via", via), zap.String("key", key), zap.Error(ctx.Err()))
		metrics.ResolveTotal.WithLabelValues(via, "not_found").Inc()
		return nil, ErrNotFound
	case res = <-ch:
	}
	if res.Err != nil {
		metrics.ResolveTotal.WithLabelValues(via, "not_found").Inc()
		return nil, ErrNotFound
	}
	v, shared := res.Val, res.Shared

	metrics.ResolveTotal.WithLabelValues(via, "found").Inc()
	if shared {
		r.log.Debug("resolution shared", zap.String("via", via), zap.String("key", key))
	}
	return v.(*SiteData), nil
}

// logFailure records the cause behind a not-found outcome.  Plain absence is
// routine and logs at debug; anything else is a degraded backend.
func (r *Resolver) logFailure(via, key string, err error) {
	if errors.Is(err, site.ErrNotFound) {
		r.log.Debug("resolve not found", zap.String("via", via), zap.String("key", key), zap.Error(err))
		return
	}
	r.log.Warn("resolve failed", zap.String("via", via), zap.String("key", key), zap.Error(err))
}
