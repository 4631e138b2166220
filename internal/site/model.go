package site

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Status is the publication state shared by sites and pages.
type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

// Valid reports whether s is a known publication state.
func (s Status) Valid() bool { return s == Draft || s == Published }

// DomainStatus tracks custom-domain verification.  Only active domains
// resolve publicly.
type DomainStatus string

const (
	DomainPending DomainStatus = "pending"
	DomainActive  DomainStatus = "active"
	DomainBlocked DomainStatus = "blocked"
)

// Valid reports whether s is a known domain state.
func (s DomainStatus) Valid() bool {
	return s == DomainPending || s == DomainActive || s == DomainBlocked
}

// Site mirrors one row in the `site` table.
//
//	CREATE TABLE site (
//	  id           CHAR(36)     NOT NULL PRIMARY KEY,
//	  slug         VARCHAR(63)  NOT NULL UNIQUE,
//	  template_key VARCHAR(32)  NOT NULL,
//	  status       ENUM('draft','published') NOT NULL DEFAULT 'draft',
//	  created_at   DATETIME     NOT NULL,
//	  updated_at   DATETIME     NOT NULL
//	);
type Site struct {
	ID          string    `db:"id"           json:"id"`
	Slug        string    `db:"slug"         json:"slug"`
	TemplateKey string    `db:"template_key" json:"templateKey"`
	Status      Status    `db:"status"       json:"status"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}

// Profile mirrors one row in `business_profile`.  Exactly one per site,
// provisioned with the site.  LogoAssetID is a weak reference: the asset may
// have vanished, and readers must tolerate that.
//
//	CREATE TABLE business_profile (
//	  site_id       CHAR(36)     NOT NULL PRIMARY KEY,
//	  business_name VARCHAR(200) NOT NULL,
//	  tagline       VARCHAR(255) NOT NULL DEFAULT '',
//	  description   TEXT         NOT NULL,
//	  address       VARCHAR(255) NOT NULL DEFAULT '',
//	  phone         VARCHAR(40)  NOT NULL DEFAULT '',
//	  email         VARCHAR(255) NOT NULL DEFAULT '',
//	  messaging     VARCHAR(255) NOT NULL DEFAULT '',
//	  social        JSON         NOT NULL,
//	  logo_asset_id CHAR(36)     NULL,
//	  updated_at    DATETIME     NOT NULL
//	);
type Profile struct {
	SiteID       string         `db:"site_id"`
	BusinessName string         `db:"business_name"`
	Tagline      string         `db:"tagline"`
	Description  string         `db:"description"`
	Address      string         `db:"address"`
	Phone        string         `db:"phone"`
	Email        string         `db:"email"`
	Messaging    string         `db:"messaging"`
	Social       types.JSONText `db:"social"`
	LogoAssetID  *string        `db:"logo_asset_id"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// SocialLinks decodes the social column.  Malformed JSON yields an empty
// map; non-string values are skipped.
func (p *Profile) SocialLinks() map[string]string {
	out := map[string]string{}
	var raw map[string]any
	if err := json.Unmarshal(p.Social, &raw); err != nil {
		return out
	}
	for k, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		}
	}
	return out
}

// Asset mirrors one row in `asset`.  Metadata holds extracted attributes,
// e.g. the logo palette under "palette".
//
//	CREATE TABLE asset (
//	  id         CHAR(36)     NOT NULL PRIMARY KEY,
//	  site_id    CHAR(36)     NOT NULL,
//	  path       VARCHAR(512) NOT NULL,
//	  mime_type  VARCHAR(100) NOT NULL,
//	  size_bytes BIGINT       NOT NULL,
//	  metadata   JSON         NOT NULL,
//	  created_at DATETIME     NOT NULL
//	);
type Asset struct {
	ID        string         `db:"id"`
	SiteID    string         `db:"site_id"`
	Path      string         `db:"path"`
	MIME      string         `db:"mime_type"`
	Size      int64          `db:"size_bytes"`
	Metadata  types.JSONText `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// Page mirrors one row in `page`.  Fixed pages (home, about, contact) and
// extra pages share the table; IsExtra tells them apart.  Data is the
// published document, DraftData the editor's working copy.  PublishedAt is
// non-NULL exactly when Status is published.
//
//	CREATE TABLE page (
//	  site_id      CHAR(36)     NOT NULL,
//	  page_key     VARCHAR(63)  NOT NULL,
//	  is_extra     TINYINT(1)   NOT NULL DEFAULT 0,
//	  title        VARCHAR(200) NOT NULL DEFAULT '',
//	  status       ENUM('draft','published') NOT NULL DEFAULT 'draft',
//	  published_at DATETIME     NULL,
//	  data         JSON         NOT NULL,
//	  draft_data   JSON         NOT NULL,
//	  updated_at   DATETIME     NOT NULL,
//	  PRIMARY KEY (site_id, page_key)
//	);
type Page struct {
	SiteID      string         `db:"site_id"`
	Key         string         `db:"page_key"`
	IsExtra     bool           `db:"is_extra"`
	Title       string         `db:"title"`
	Status      Status         `db:"status"`
	PublishedAt *time.Time     `db:"published_at"`
	Data        types.JSONText `db:"data"`
	DraftData   types.JSONText `db:"draft_data"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// PageRef is the minimal projection of a page row.
type PageRef struct {
	Key    string `db:"page_key"`
	Title  string `db:"title"`
	Status Status `db:"status"`
}

// Domain mirrors one row in `domain`.
//
//	CREATE TABLE domain (
//	  hostname   VARCHAR(253) NOT NULL PRIMARY KEY,
//	  site_id    CHAR(36)     NOT NULL,
//	  status     ENUM('pending','active','blocked') NOT NULL DEFAULT 'pending',
//	  created_at DATETIME     NOT NULL,
//	  updated_at DATETIME     NOT NULL
//	);
type Domain struct {
	Hostname  string       `db:"hostname"`
	SiteID    string       `db:"site_id"`
	Status    DomainStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}
