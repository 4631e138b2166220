// cmd/sitectl/main.go
//
// sitectl – operator CLI for the site tables.
//
// Context
// -------
// The public server is read-only.  Every write (creating sites, saving and
// publishing page content, registering custom domains, uploading logos) goes
// through this tool, which shares config, database, and storage wiring with
// cmd/web.
//
// Commands
// --------
//
//	site   create | publish | unpublish
//	page   draft | publish | unpublish | add-extra
//	domain add | set-status
//	logo   upload | remove | palette
//	resolve <slug|hostname>
//
// Notes
// -----
// • Logs go to stderr only; command output goes to stdout.
// • `logo palette` needs neither config nor database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/config"
	"github.com/yanizio/sitekit/internal/database"
	"github.com/yanizio/sitekit/internal/logger"
	"github.com/yanizio/sitekit/internal/site"
	"github.com/yanizio/sitekit/internal/storage"
	"github.com/yanizio/sitekit/internal/vault"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sitectl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sitectl",
		Usage: "manage sitekit sites, pages, domains, and logos",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "debug, info, warn, or error",
				EnvVars: []string{"SITECTL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Console(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			siteCommand(),
			pageCommand(),
			domainCommand(),
			logoCommand(),
			resolveCommand(),
		},
	}
}

// env is the wiring shared by commands that touch the database.
type env struct {
	cfg   *config.Config
	db    *sqlx.DB
	store *site.Store
}

// openEnv loads config and connects.  Callers must Close the result.
func openEnv(ctx context.Context) (*env, error) {
	res := vault.Lazy(ctx, func(format string, args ...any) { zap.S().Infof(format, args...) })
	cfg, err := config.Load(ctx, config.SecretResolver(res))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dsn, err := database.DSN(cfg.Database.DSN, cfg.Database.Password)
	if err != nil {
		return nil, err
	}
	opts := database.DefaultOptions()
	opts.MaxOpenConns = 2
	opts.MaxIdleConns = 1
	db, err := database.OpenWithOptions(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, store: site.NewStore(db)}, nil
}

func (e *env) Close() error { return e.db.Close() }

// blobs builds the configured storage backend.
func (e *env) blobs() (storage.Store, error) {
	s := e.cfg.Storage
	return storage.New(storage.Config{
		Driver:        s.Driver,
		LocalDir:      s.LocalDir,
		PublicBaseURL: s.PublicBaseURL,
		S3: storage.S3Config{
			Bucket:          s.S3.Bucket,
			Region:          s.S3.Region,
			Endpoint:        s.S3.Endpoint,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
			ForcePathStyle:  s.S3.ForcePathStyle,
		},
	})
}

// withEnv adapts an action that needs the database.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c.Context)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(c, e)
	}
}

// siteFor looks a site up by slug regardless of status.
func siteFor(c *cli.Context, e *env, slug string) (*site.Site, error) {
	if slug == "" {
		return nil, cli.Exit("missing <slug>", 2)
	}
	s, err := e.store.SiteBySlug(c.Context, slug)
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", slug, err)
	}
	return s, nil
}
