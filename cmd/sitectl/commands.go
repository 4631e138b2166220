package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/sitekit/internal/resolve"
	"github.com/yanizio/sitekit/internal/routing"
	"github.com/yanizio/sitekit/internal/site"
	"github.com/yanizio/sitekit/internal/theme"
)

/*──────────────────────────── site ────────────────────────────────────────*/

func siteCommand() *cli.Command {
	return &cli.Command{
		Name:  "site",
		Usage: "create and publish sites",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "create a draft site with default pages",
				ArgsUsage: "<business name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slug", Usage: "URL slug (derived from the name when empty)"},
					&cli.StringFlag{Name: "template", Value: "classic", Usage: "template key"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "phone"},
				},
				Action: withEnv(func(c *cli.Context, e *env) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("missing <business name>", 2)
					}
					slug := c.String("slug")
					if slug == "" {
						slug = routing.MakeSlug(name)
					}
					if routing.Reserved(slug) {
						return cli.Exit(fmt.Sprintf("slug %q is reserved", slug), 2)
					}
					tpl := c.String("template")
					if !theme.Default().Has(tpl) {
						return cli.Exit(fmt.Sprintf("unknown template %q (have %v)", tpl, theme.Default().Keys()), 2)
					}

					s, err := e.store.CreateSite(c.Context, site.NewSite{
						Slug:         slug,
						TemplateKey:  tpl,
						BusinessName: name,
						Email:        c.String("email"),
						Phone:        c.String("phone"),
					})
					if err != nil {
						return err
					}
					zap.S().Infow("site created", "id", s.ID, "slug", s.Slug)
					return printJSON(c.App.Writer, s)
				}),
			},
			{
				Name:      "publish",
				ArgsUsage: "<slug>",
				Action:    setSiteStatus(site.Published),
			},
			{
				Name:      "unpublish",
				ArgsUsage: "<slug>",
				Action:    setSiteStatus(site.Draft),
			},
		},
	}
}

func setSiteStatus(st site.Status) cli.ActionFunc {
	return withEnv(func(c *cli.Context, e *env) error {
		s, err := siteFor(c, e, c.Args().First())
		if err != nil {
			return err
		}
		if err := e.store.SetSiteStatus(c.Context, s.ID, st); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: %s\n", s.Slug, st)
		return nil
	})
}

/*──────────────────────────── page ────────────────────────────────────────*/

func pageCommand() *cli.Command {
	return &cli.Command{
		Name:  "page",
		Usage: "edit and publish page content",
		Subcommands: []*cli.Command{
			{
				Name:      "draft",
				Usage:     "save a JSON or YAML document as the page draft (\"-\" reads JSON from stdin)",
				ArgsUsage: "<slug> <page> <file>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					s, err := siteFor(c, e, c.Args().Get(0))
					if err != nil {
						return err
					}
					key, file := c.Args().Get(1), c.Args().Get(2)
					if key == "" || file == "" {
						return cli.Exit("usage: page draft <slug> <page> <file>", 2)
					}
					doc, err := readInput(c, file)
					if err != nil {
						return err
					}
					if err := e.store.SaveDraft(c.Context, s.ID, key, doc); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s/%s: draft saved\n", s.Slug, key)
					return nil
				}),
			},
			{
				Name:      "publish",
				Usage:     "publish the current draft",
				ArgsUsage: "<slug> <page>",
				Action: pageAction(func(c *cli.Context, e *env, s *site.Site, key string) error {
					return e.store.PublishPage(c.Context, s.ID, key)
				}, "published"),
			},
			{
				Name:      "unpublish",
				ArgsUsage: "<slug> <page>",
				Action: pageAction(func(c *cli.Context, e *env, s *site.Site, key string) error {
					return e.store.UnpublishPage(c.Context, s.ID, key)
				}, "unpublished"),
			},
			{
				Name:      "add-extra",
				Usage:     "add a draft extra page with placeholder content",
				ArgsUsage: "<slug> <page>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "navigation title"},
				},
				Action: pageAction(func(c *cli.Context, e *env, s *site.Site, key string) error {
					return e.store.CreateExtraPage(c.Context, s.ID, key, c.String("title"))
				}, "created"),
			},
		},
	}
}

func pageAction(fn func(c *cli.Context, e *env, s *site.Site, key string) error, done string) cli.ActionFunc {
	return withEnv(func(c *cli.Context, e *env) error {
		s, err := siteFor(c, e, c.Args().Get(0))
		if err != nil {
			return err
		}
		key := c.Args().Get(1)
		if key == "" {
			return cli.Exit("missing <page>", 2)
		}
		if err := fn(c, e, s, key); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s/%s: %s\n", s.Slug, key, done)
		return nil
	})
}

// readInput reads a file, or stdin for "-".  YAML files are converted to
// JSON so page content can be written in either.
func readInput(c *cli.Context, name string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if name == "-" {
		r := c.App.Reader
		if r == nil {
			r = os.Stdin
		}
		raw, err = io.ReadAll(r)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yamlToJSON(raw)
	}
	return raw, nil
}

// yamlToJSON re-encodes a YAML document.  yaml.v3 decodes mappings with
// string keys into map[string]any, which encoding/json accepts.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return json.Marshal(doc)
}

/*──────────────────────────── domain ──────────────────────────────────────*/

func domainCommand() *cli.Command {
	return &cli.Command{
		Name:  "domain",
		Usage: "manage custom domains",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "register a custom domain in the pending state",
				ArgsUsage: "<slug> <hostname>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					s, err := siteFor(c, e, c.Args().Get(0))
					if err != nil {
						return err
					}
					d, err := e.store.AddDomain(c.Context, s.ID, c.Args().Get(1), e.cfg.Platform.BaseDomain)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s: %s\n", d.Hostname, d.Status)
					return nil
				}),
			},
			{
				Name:      "set-status",
				Usage:     "move a domain to pending, active, or blocked",
				ArgsUsage: "<hostname> <status>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					host := c.Args().Get(0)
					st := site.DomainStatus(c.Args().Get(1))
					if host == "" || !st.Valid() {
						return cli.Exit("usage: domain set-status <hostname> pending|active|blocked", 2)
					}
					if err := e.store.SetDomainStatus(c.Context, host, st); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s: %s\n", routing.NormalizeHost(host), st)
					return nil
				}),
			},
		},
	}
}

/*──────────────────────────── resolve ─────────────────────────────────────*/

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "print the public SiteData for a slug or custom hostname",
		ArgsUsage: "<slug|hostname>",
		Action: withEnv(func(c *cli.Context, e *env) error {
			arg := c.Args().First()
			if arg == "" {
				return cli.Exit("missing <slug|hostname>", 2)
			}
			blobs, err := e.blobs()
			if err != nil {
				return err
			}
			r := resolve.New(e.store,
				resolve.WithLogger(zap.L()),
				resolve.WithAssetURL(blobs.URL))

			var sd *resolve.SiteData
			if routing.ValidSlug(arg) {
				sd, err = r.BySlug(c.Context, arg)
			} else {
				sd, err = r.ByHostname(c.Context, routing.NormalizeHost(arg))
			}
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, sd)
		}),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
