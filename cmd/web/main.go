// cmd/web/main.go
//
// sitekit – public HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load config (conf/.env → conf/global.yaml → SITEKIT_* env), with
//     `vault:` values resolved through a lazily built Vault client.
//
//  2. Start the daily rotating logger (tees to console when running in a
//     TTY).
//
//  3. Open the MySQL pool and log the published-site count.
//
//  4. Build the storage backend, the resolver, and the template registry.
//
//  5. Open the optional GeoIP database for access-log enrichment.
//
//  6. Serve until SIGINT or SIGTERM, then drain for shutdown_timeout.
//     SIGHUP re-reads config and applies a changed log.level; other
//     settings need a restart.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/config"
	"github.com/yanizio/sitekit/internal/database"
	"github.com/yanizio/sitekit/internal/logger"
	"github.com/yanizio/sitekit/internal/requestinfo"
	"github.com/yanizio/sitekit/internal/resolve"
	"github.com/yanizio/sitekit/internal/server"
	"github.com/yanizio/sitekit/internal/site"
	"github.com/yanizio/sitekit/internal/storage"
	"github.com/yanizio/sitekit/internal/theme"
	"github.com/yanizio/sitekit/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("sitekit: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx, vaultResolver(ctx))
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer logOut.Sync()
	zl := logOut.Desugar()

	//
	// ── 3.  Database ────────────────────────────────────────────────────
	//
	dsn, err := database.DSN(cfg.Database.DSN, cfg.Database.Password)
	if err != nil {
		return err
	}
	logOut.Info("connecting to database …")
	db, err := database.OpenWithOptions(ctx, dsn, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Retries:         database.DefaultOptions().Retries,
		RetryBackoff:    database.DefaultOptions().RetryBackoff,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	store := site.NewStore(db)
	reportPublished(ctx, store, logOut)

	//
	// ── 4.  Storage, resolver, templates ────────────────────────────────
	//
	blobs, err := storage.New(storage.Config{
		Driver:        cfg.Storage.Driver,
		LocalDir:      cfg.Storage.LocalDir,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		S3: storage.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			ForcePathStyle:  cfg.Storage.S3.ForcePathStyle,
		},
	})
	if err != nil {
		return err
	}
	var assetDir string
	if l, ok := blobs.(*storage.Local); ok {
		assetDir = l.Dir()
	}

	res := resolve.New(store,
		resolve.WithLogger(zl),
		resolve.WithAssetURL(blobs.URL),
	)
	themes := theme.Default()
	logOut.Infow("templates loaded", "keys", themes.Keys())

	//
	// ── 5.  GeoIP (optional) ────────────────────────────────────────────
	//
	geo, err := requestinfo.OpenGeo(cfg.GeoIP.DBPath)
	if err != nil {
		logOut.Warnw("geoip disabled", "path", cfg.GeoIP.DBPath, "err", err)
		geo = nil
	}

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	handler := server.Routes(server.Deps{
		Resolver:       res,
		Themes:         themes,
		PlatformDomain: cfg.Platform.BaseDomain,
		ForceHTTPS:     cfg.HTTP.ForceHTTPS,
		AssetDir:       assetDir,
		Geo:            geo,
		Ping:           db.PingContext,
		Log:            zl,
	})
	srv := server.New(cfg.HTTP, handler)
	go reloadOnHangup(ctx)
	return server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout)
}

// reloadOnHangup re-reads config on SIGHUP until ctx ends.
func reloadOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}
		if err := config.Reload(ctx); err != nil {
			zap.S().Errorw("config reload failed; keeping previous", "err", err)
			continue
		}
		lvl := config.Get().Log.Level
		if logger.SetLevel(lvl) {
			zap.S().Infow("log level changed", "level", lvl)
		}
	}
}

// reportPublished logs the published-site count as an early sanity check.
// A failed count is only a warning; the server still starts.
func reportPublished(ctx context.Context, store interface {
	CountPublished(context.Context) (int, error)
}, log *zap.SugaredLogger) {
	n, err := store.CountPublished(ctx)
	if err != nil {
		log.Warnw("database online, published-site count failed", "err", err)
		return
	}
	log.Infow("database online", "published_sites", n)
}

// vaultResolver defers Vault client construction until the config
// actually holds a `vault:` reference.
func vaultResolver(ctx context.Context) config.SecretResolver {
	// zap.S() is looked up per call so renewal logs reach the file logger
	// installed after config load.
	r := vault.Lazy(ctx, func(format string, args ...any) { zap.S().Infof(format, args...) })
	return config.SecretResolver(r)
}
