// internal/site/lifecycle.go
//
// Write operations used by operators (cmd/sitectl).
//
// Context
// -------
// The public read path never writes.  Everything here is an admin action:
// creating a site with its profile and default pages, publishing and
// unpublishing, registering custom domains, and managing logo assets.
//
// Invariants
// ----------
// • A page's published_at is non-NULL exactly when its status is published.
//   Every page write derives both columns from publication().
// • Publishing copies draft_data into data verbatim, inside the UPDATE.
// • An asset referenced by a profile cannot be deleted (ErrAssetInUse).
//
// Notes
// -----
// • Unique-key violations (MySQL 1062) surface as ErrConflict.
// • RowsAffected relies on clientFoundRows, set by internal/database.

package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitekit/internal/pagedata"
	"github.com/yanizio/sitekit/internal/routing"
)

var validate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return routing.ValidSlug(fl.Field().String())
	})
	return v
}()

// NewSite is the input of CreateSite.
type NewSite struct {
	Slug         string `validate:"required,slug"`
	TemplateKey  string `validate:"required,max=32"`
	BusinessName string `validate:"required,max=200"`
	Email        string `validate:"omitempty,email"`
	Phone        string `validate:"omitempty,max=40"`
}

// NewAsset is the input of CreateAsset.
type NewAsset struct {
	SiteID   string `validate:"required"`
	Path     string `validate:"required,max=512"`
	MIME     string `validate:"required"`
	Size     int64  `validate:"gte=0"`
	Metadata json.RawMessage
}

// publication derives the status columns of a page write.
func publication(st Status, now time.Time) (Status, *time.Time) {
	if st == Published {
		return Published, &now
	}
	return Draft, nil
}

/*──────────────────────────── sites ───────────────────────────────────────*/

// CreateSite inserts a draft site, its profile, and the three fixed pages
// holding curated defaults, all in one transaction.
func (s *Store) CreateSite(ctx context.Context, in NewSite) (*Site, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	st := &Site{
		ID:          uuid.NewString(),
		Slug:        in.Slug,
		TemplateKey: in.TemplateKey,
		Status:      Draft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site (id, slug, template_key, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			st.ID, st.Slug, st.TemplateKey, st.Status, now, now); err != nil {
			return wrapWrite("CreateSite", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_profile (site_id, business_name, description, phone, email, social, updated_at)
VALUES (?, ?, '', ?, ?, '{}', ?)`,
			st.ID, in.BusinessName, in.Phone, in.Email, now); err != nil {
			return wrapWrite("CreateSite", err)
		}

		for _, key := range pagedata.PageKeys() {
			doc, err := json.Marshal(pagedata.DefaultFor(key))
			if err != nil {
				return err
			}
			status, publishedAt := publication(Draft, now)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO page (site_id, page_key, is_extra, title, status, published_at, data, draft_data, updated_at)
VALUES (?, ?, 0, ?, ?, ?, ?, ?, ?)`,
				st.ID, string(key), pagedata.DefaultFor(key).SEO.Title, status, publishedAt, doc, doc, now); err != nil {
				return wrapWrite("CreateSite", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// SetSiteStatus publishes or unpublishes a whole site.
func (s *Store) SetSiteStatus(ctx context.Context, siteID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE site SET status = ?, updated_at = ? WHERE id = ?`,
		status, s.now(), siteID)
	return affected("SetSiteStatus", res, err)
}

/*──────────────────────────── pages ───────────────────────────────────────*/

// SaveDraft stores doc as the working copy of one page.  doc must pass the
// page-content shape check; it is stored byte for byte.
func (s *Store) SaveDraft(ctx context.Context, siteID, key string, doc []byte) error {
	if _, err := pagedata.Parse(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE page SET draft_data = ?, updated_at = ? WHERE site_id = ? AND page_key = ?`,
		doc, s.now(), siteID, key)
	return affected("SaveDraft", res, err)
}

// PublishPage copies the draft into the published document.
func (s *Store) PublishPage(ctx context.Context, siteID, key string) error {
	now := s.now()
	status, publishedAt := publication(Published, now)
	res, err := s.db.ExecContext(ctx,
		`UPDATE page SET data = draft_data, status = ?, published_at = ?, updated_at = ?
WHERE site_id = ? AND page_key = ?`,
		status, publishedAt, now, siteID, key)
	return affected("PublishPage", res, err)
}

// UnpublishPage hides a page.  Its documents are kept.
func (s *Store) UnpublishPage(ctx context.Context, siteID, key string) error {
	now := s.now()
	status, publishedAt := publication(Draft, now)
	res, err := s.db.ExecContext(ctx,
		`UPDATE page SET status = ?, published_at = ?, updated_at = ?
WHERE site_id = ? AND page_key = ?`,
		status, publishedAt, now, siteID, key)
	return affected("UnpublishPage", res, err)
}

// CreateExtraPage adds a draft extra page with placeholder content.  key
// must be slug-shaped and must not shadow a fixed page.
func (s *Store) CreateExtraPage(ctx context.Context, siteID, key, title string) error {
	if !routing.ValidSlug(key) || pagedata.PageKey(key).Valid() {
		return fmt.Errorf("%w: page key %q", ErrInvalidInput, key)
	}
	doc, err := json.Marshal(pagedata.DefaultExtra(title))
	if err != nil {
		return err
	}
	now := s.now()
	status, publishedAt := publication(Draft, now)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO page (site_id, page_key, is_extra, title, status, published_at, data, draft_data, updated_at)
VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?)`,
		siteID, key, title, status, publishedAt, doc, doc, now)
	return wrapWrite("CreateExtraPage", err)
}

/*──────────────────────────── domains ─────────────────────────────────────*/

// AddDomain registers hostname for siteID in the pending state.  Hostnames
// on the platform domain are rejected; those are served by subdomain.
func (s *Store) AddDomain(ctx context.Context, siteID, hostname, platformDomain string) (*Domain, error) {
	h := routing.NormalizeHost(hostname)
	if err := ValidateHostname(h, platformDomain); err != nil {
		return nil, err
	}

	now := s.now()
	d := &Domain{Hostname: h, SiteID: siteID, Status: DomainPending, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO domain (hostname, site_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.Hostname, d.SiteID, d.Status, now, now)
	if err != nil {
		return nil, wrapWrite("AddDomain", err)
	}
	return d, nil
}

// SetDomainStatus moves a domain between pending, active, and blocked.
func (s *Store) SetDomainStatus(ctx context.Context, hostname string, status DomainStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: domain status %q", ErrInvalidInput, status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE domain SET status = ?, updated_at = ? WHERE hostname = ?`,
		status, s.now(), routing.NormalizeHost(hostname))
	return affected("SetDomainStatus", res, err)
}

/*──────────────────────────── assets ──────────────────────────────────────*/

// CreateAsset records an uploaded blob.
func (s *Store) CreateAsset(ctx context.Context, in NewAsset) (*Asset, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	meta := in.Metadata
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}

	a := &Asset{
		ID:        uuid.NewString(),
		SiteID:    in.SiteID,
		Path:      in.Path,
		MIME:      in.MIME,
		Size:      in.Size,
		Metadata:  []byte(meta),
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO asset (id, site_id, path, mime_type, size_bytes, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SiteID, a.Path, a.MIME, a.Size, []byte(meta), a.CreatedAt)
	if err != nil {
		return nil, wrapWrite("CreateAsset", err)
	}
	return a, nil
}

// AttachLogo points the profile of siteID at assetID.  The asset must belong
// to the same site.
func (s *Store) AttachLogo(ctx context.Context, siteID, assetID string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var owner string
		if err := tx.GetContext(ctx, &owner,
			`SELECT site_id FROM asset WHERE id = ? FOR UPDATE`, assetID); err != nil {
			return wrapRead("AttachLogo", err)
		}
		if owner != siteID {
			return fmt.Errorf("AttachLogo: asset of another site: %w", ErrNotFound)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE business_profile SET logo_asset_id = ?, updated_at = ? WHERE site_id = ?`,
			assetID, s.now(), siteID)
		return affected("AttachLogo", res, err)
	})
}

// DetachLogo clears the profile's logo reference.
func (s *Store) DetachLogo(ctx context.Context, siteID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE business_profile SET logo_asset_id = NULL, updated_at = ? WHERE site_id = ?`,
		s.now(), siteID)
	return affected("DetachLogo", res, err)
}

// DeleteAsset removes an unreferenced asset row and returns it so the caller
// can remove the blob.
func (s *Store) DeleteAsset(ctx context.Context, assetID string) (*Asset, error) {
	var a Asset
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &a,
			`SELECT id, site_id, path, mime_type, size_bytes, metadata, created_at
FROM asset WHERE id = ? FOR UPDATE`, assetID); err != nil {
			return wrapRead("DeleteAsset", err)
		}

		var refs int
		if err := tx.GetContext(ctx, &refs,
			`SELECT COUNT(*) FROM business_profile WHERE logo_asset_id = ?`, assetID); err != nil {
			return wrapRead("DeleteAsset", err)
		}
		if refs > 0 {
			return fmt.Errorf("DeleteAsset %s: %w", assetID, ErrAssetInUse)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM asset WHERE id = ?`, assetID)
		return affected("DeleteAsset", res, err)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(op string, res interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return wrapWrite(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
