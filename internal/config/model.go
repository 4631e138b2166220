// internal/config/model.go
//
// Typed configuration model for sitekit.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `SITEKIT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Defaults are applied after unmarshal and before validation; the app
// fails fast if required fields are still missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • Durations accept Go syntax ("15s", "2m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

// DefaultBaseDomain is used when platform.base_domain is unset.
const DefaultBaseDomain = "sitekit.app"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Platform section
//

// Platform names the domain tenant subdomains hang off.
type Platform struct {
	BaseDomain string `koanf:"base_domain" validate:"required,hostname_rfc1123"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The DSN is kept in YAML so operators can tweak host, port, or flags
// without touching Vault.  The password is usually a `vault:` reference
// and is injected into the DSN at connect time, keeping credentials out of
// flat files and git history.
type Database struct {
	DSN             string        `koanf:"dsn"               validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
}

//
// Storage section
//

// Storage selects where uploaded logos live.  The driver decides which
// of LocalDir or S3.Bucket is required (see storageRules).
type Storage struct {
	Driver        string `koanf:"driver"          validate:"oneof=local s3"`
	LocalDir      string `koanf:"local_dir"`
	PublicBaseURL string `koanf:"public_base_url"`
	S3            S3     `koanf:"s3"`
}

// S3 configures an S3-compatible bucket (AWS, R2, MinIO).
type S3 struct {
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"          validate:"omitempty,url"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	ForcePathStyle  bool   `koanf:"force_path_style"`
}

//
// Log section
//

// Log tunes the process logger.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

//
// GeoIP section
//

// GeoIP points at an optional MaxMind GeoLite2-City database used to tag
// visitor access logs.  Empty disables lookups.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or SITEKIT_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // SITEKIT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Platform Platform `koanf:"platform"`
	Database Database `koanf:"database"`
	Storage  Storage  `koanf:"storage"`
	Log      Log      `koanf:"log"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
