// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `SITEKIT_`, where `__` maps to “.”
     (e.g., `SITEKIT_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, string values of the form `vault:<mount/path>#<key>` are
swapped for the secret they name, the tree is unmarshalled into
strongly-typed structs, defaults are filled, the result is validated,
enriched with the runtime root path, and cached in an `atomic.Pointer` for
lock-free reads.  `Reload()` simply calls `Load()` again and swaps the
pointer.

Instrumentation
---------------
  • DEBUG: root discovery, YAML read, env overlay, secret refs.
  • ERROR: YAML parse, env overlay, secrets, unmarshal, validation.
  • INFO: one "config loaded" line with the key settings.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Secret values are never logged.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "SITEKIT_"

// SecretPrefix marks a value to be read from Vault.
const SecretPrefix = "vault:"

// SecretResolver returns the secret a `vault:` reference names.  ref has
// the prefix already stripped.
type SecretResolver func(ctx context.Context, ref string) (string, error)

var (
	current  atomic.Pointer[Config]
	resolver atomic.Pointer[SecretResolver]
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SITEKIT_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets with res (nil
// leaves `vault:` values in place and fails validation if one is needed),
// validates, and caches Config.
func Load(ctx context.Context, res SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	if res != nil {
		resolver.Store(&res)
	}
	cfg, err := LoadFrom(ctx, root, res)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	return cfg, nil
}

// LoadFrom is Load against an explicit root.  It does not touch the cached
// Config.
func LoadFrom(ctx context.Context, root string, res SecretResolver) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: SITEKIT_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, res); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"base_domain", cfg.Platform.BaseDomain,
		"storage", cfg.Storage.Driver,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps SITEKIT_DATABASE__DSN to database.dsn.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// resolveSecrets replaces every `vault:` string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, res SecretResolver) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, SecretPrefix) {
			continue
		}
		if res == nil {
			return fmt.Errorf("config: %s references a secret but no resolver is configured", key)
		}
		zap.S().Debugw("config secret ref", "key", key)
		secret, err := res(ctx, strings.TrimPrefix(s, SecretPrefix))
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	setDur(&c.HTTP.ReadTimeout, 10*time.Second)
	setDur(&c.HTTP.WriteTimeout, 15*time.Second)
	setDur(&c.HTTP.IdleTimeout, 60*time.Second)
	setDur(&c.HTTP.ShutdownTimeout, 10*time.Second)

	c.Platform.BaseDomain = strings.ToLower(strings.TrimSpace(c.Platform.BaseDomain))
	if c.Platform.BaseDomain == "" {
		c.Platform.BaseDomain = DefaultBaseDomain
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 15
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	setDur(&c.Database.ConnMaxLifetime, 30*time.Minute)

	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Driver == "local" && c.Storage.LocalDir == "" {
		c.Storage.LocalDir = filepath.Join(c.Paths.Root, "data", "assets")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setDur(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the Config from the last successful Load, or nil.
func Get() *Config { return current.Load() }

// Reload re-runs Load with the resolver of the previous Load.
func Reload(ctx context.Context) error {
	var res SecretResolver
	if p := resolver.Load(); p != nil {
		res = *p
	}
	_, err := Load(ctx, res)
	return err
}
