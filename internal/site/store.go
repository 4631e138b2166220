// internal/site/store.go
//
// Read queries over the site tables.
//
// Context
// -------
// The public read path (internal/resolve) calls these in sequence for every
// request: site, profile, logo asset, pages.  Each is an independent
// single-statement read with no transaction; see resolve for why that is
// acceptable.
//
// Notes
// -----
// • sql.ErrNoRows is translated to ErrNotFound; every other error is wrapped
//   with the operation name and returned as-is.
// • IN clauses are expanded with sqlx.In and rebound for the driver.

package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a row is absent or filtered out.
	ErrNotFound = errors.New("site: not found")

	// ErrConflict is returned when a unique key already exists.
	ErrConflict = errors.New("site: already exists")

	// ErrAssetInUse is returned when deleting an asset a profile still
	// references.
	ErrAssetInUse = errors.New("site: asset is referenced by a profile")

	// ErrInvalidHostname is returned for custom domains that are not
	// well-formed DNS names.
	ErrInvalidHostname = errors.New("site: invalid hostname")

	// ErrInvalidInput wraps validator failures on write input.
	ErrInvalidInput = errors.New("site: invalid input")
)

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// Store reads and writes the site tables.  Construct once at process start
// and share; *sqlx.DB is safe for concurrent use.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx runs fn inside one transaction.  fn's error rolls back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

const siteColumns = `id, slug, template_key, status, created_at, updated_at`

// PublishedSiteBySlug returns the published site with slug.
func (s *Store) PublishedSiteBySlug(ctx context.Context, slug string) (*Site, error) {
	const q = `SELECT ` + siteColumns + ` FROM site WHERE slug = ? AND status = ?`
	return getSite(ctx, s.db, "PublishedSiteBySlug", q, slug, Published)
}

// PublishedSiteByID returns the published site with id.
func (s *Store) PublishedSiteByID(ctx context.Context, id string) (*Site, error) {
	const q = `SELECT ` + siteColumns + ` FROM site WHERE id = ? AND status = ?`
	return getSite(ctx, s.db, "PublishedSiteByID", q, id, Published)
}

// SiteBySlug returns the site with slug in any status.  Admin use only.
func (s *Store) SiteBySlug(ctx context.Context, slug string) (*Site, error) {
	const q = `SELECT ` + siteColumns + ` FROM site WHERE slug = ?`
	return getSite(ctx, s.db, "SiteBySlug", q, slug)
}

func getSite(ctx context.Context, exec executor, op, q string, args ...any) (*Site, error) {
	var st Site
	if err := exec.GetContext(ctx, &st, q, args...); err != nil {
		return nil, wrapRead(op, err)
	}
	return &st, nil
}

// ProfileBySite returns the business profile of siteID.
func (s *Store) ProfileBySite(ctx context.Context, siteID string) (*Profile, error) {
	const q = `SELECT site_id, business_name, tagline, description, address, phone, email,
messaging, social, logo_asset_id, updated_at FROM business_profile WHERE site_id = ?`

	var p Profile
	if err := s.db.GetContext(ctx, &p, q, siteID); err != nil {
		return nil, wrapRead("ProfileBySite", err)
	}
	return &p, nil
}

// AssetByID returns one asset.
func (s *Store) AssetByID(ctx context.Context, id string) (*Asset, error) {
	const q = `SELECT id, site_id, path, mime_type, size_bytes, metadata, created_at
FROM asset WHERE id = ?`

	var a Asset
	if err := s.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, wrapRead("AssetByID", err)
	}
	return &a, nil
}

// PublishedPages returns the published fixed pages of siteID among keys.
// Missing keys are simply absent from the result.
func (s *Store) PublishedPages(ctx context.Context, siteID string, keys []string) ([]Page, error) {
	const q = `SELECT site_id, page_key, is_extra, title, status, published_at, data
FROM page WHERE site_id = ? AND is_extra = 0 AND status = ? AND page_key IN (?)`

	var rows []Page
	if err := selectIn(ctx, s.db, &rows, q, siteID, Published, keys); err != nil {
		return nil, wrapRead("PublishedPages", err)
	}
	return rows, nil
}

// PublishedPageKeys is the minimal projection of PublishedPages.  It reads
// the key and status columns only, so Title is always empty.
func (s *Store) PublishedPageKeys(ctx context.Context, siteID string, keys []string) ([]PageRef, error) {
	const q = `SELECT page_key, status
FROM page WHERE site_id = ? AND is_extra = 0 AND status = ? AND page_key IN (?)`

	var rows []PageRef
	if err := selectIn(ctx, s.db, &rows, q, siteID, Published, keys); err != nil {
		return nil, wrapRead("PublishedPageKeys", err)
	}
	return rows, nil
}

// PublishedExtraPage returns one published extra page.
func (s *Store) PublishedExtraPage(ctx context.Context, siteID, key string) (*Page, error) {
	const q = `SELECT site_id, page_key, is_extra, title, status, published_at, data
FROM page WHERE site_id = ? AND page_key = ? AND is_extra = 1 AND status = ?`

	var p Page
	if err := s.db.GetContext(ctx, &p, q, siteID, key, Published); err != nil {
		return nil, wrapRead("PublishedExtraPage", err)
	}
	return &p, nil
}

// ExtraPageKeys lists the published extra pages of siteID for navigation,
// ordered by key.
func (s *Store) ExtraPageKeys(ctx context.Context, siteID string) ([]PageRef, error) {
	const q = `SELECT page_key, title, status
FROM page WHERE site_id = ? AND is_extra = 1 AND status = ? ORDER BY page_key`

	var rows []PageRef
	if err := s.db.SelectContext(ctx, &rows, q, siteID, Published); err != nil {
		return nil, wrapRead("ExtraPageKeys", err)
	}
	return rows, nil
}

// CountPublished returns the number of published sites.
func (s *Store) CountPublished(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM site WHERE status = ?`, Published); err != nil {
		return 0, fmt.Errorf("site: CountPublished: %w", err)
	}
	return n, nil
}

// ActiveDomain returns the active custom domain for hostname.  The caller
// normalizes hostname first.
func (s *Store) ActiveDomain(ctx context.Context, hostname string) (*Domain, error) {
	const q = `SELECT hostname, site_id, status, created_at, updated_at
FROM domain WHERE hostname = ? AND status = ?`

	var d Domain
	if err := s.db.GetContext(ctx, &d, q, hostname, DomainActive); err != nil {
		return nil, wrapRead("ActiveDomain", err)
	}
	return &d, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func selectIn(ctx context.Context, exec executor, dest any, q string, args ...any) error {
	query, expanded, err := sqlx.In(q, args...)
	if err != nil {
		return err
	}
	return exec.SelectContext(ctx, dest, exec.Rebind(query), expanded...)
}

func wrapRead(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
