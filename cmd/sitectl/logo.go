package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/palette"
	"github.com/yanizio/sitekit/internal/site"
	"github.com/yanizio/sitekit/internal/storage"
)

// maxLogoBytes caps uploads.
const maxLogoBytes = 5 << 20

var errNotImage = errors.New("logo: not a supported image type")

func logoCommand() *cli.Command {
	return &cli.Command{
		Name:  "logo",
		Usage: "upload logos and extract brand palettes",
		Subcommands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "store a logo, extract its palette, and attach it to the profile",
				ArgsUsage: "<slug> <file>",
				Action:    withEnv(uploadLogo),
			},
			{
				Name:      "remove",
				Usage:     "detach the current logo and delete its asset",
				ArgsUsage: "<slug>",
				Action:    withEnv(removeLogo),
			},
			{
				Name:      "palette",
				Usage:     "print the palette of an image file or URL",
				ArgsUsage: "<file|url>",
				Action: func(c *cli.Context) error {
					src := c.Args().First()
					if src == "" {
						return cli.Exit("missing <file|url>", 2)
					}
					var (
						res palette.Result
						err error
					)
					if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
						res, err = palette.Fetch(c.Context, nil, src, palette.DefaultOptions())
					} else {
						var f *os.File
						if f, err = os.Open(src); err == nil {
							res, err = palette.FromReader(f, palette.DefaultOptions())
							f.Close()
						}
					}
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, res)
				},
			},
		},
	}
}

// logoUpload is a checked logo file ready to store.
type logoUpload struct {
	Data    []byte
	MIME    string
	Ext     string
	Palette *palette.Result
}

// prepareLogo sniffs the content type and extracts the palette.  Formats
// the decoder cannot read (SVG) are stored without a palette.
func prepareLogo(r io.Reader) (*logoUpload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxLogoBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxLogoBytes {
		return nil, fmt.Errorf("logo: larger than %d bytes", maxLogoBytes)
	}

	mt := mimetype.Detect(data)
	mime, _, _ := strings.Cut(mt.String(), ";")
	ext := storage.ExtFor(mime)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", errNotImage, mime)
	}

	up := &logoUpload{Data: data, MIME: mime, Ext: ext}
	if res, err := palette.FromReader(bytes.NewReader(data), palette.DefaultOptions()); err == nil {
		up.Palette = &res
	} else {
		zap.S().Warnw("logo palette skipped", "mime", mime, "err", err)
	}
	return up, nil
}

// metadata is the asset metadata document for up.
func (up *logoUpload) metadata() (json.RawMessage, error) {
	if up.Palette == nil {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(map[string]any{"palette": up.Palette})
}

func uploadLogo(c *cli.Context, e *env) error {
	s, err := siteFor(c, e, c.Args().Get(0))
	if err != nil {
		return err
	}
	file := c.Args().Get(1)
	if file == "" {
		return cli.Exit("missing <file>", 2)
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	up, err := prepareLogo(f)
	if err != nil {
		return err
	}
	meta, err := up.metadata()
	if err != nil {
		return err
	}

	blobs, err := e.blobs()
	if err != nil {
		return err
	}
	key := storage.LogoKey(s.ID, up.Ext)
	if err := blobs.Put(c.Context, key, bytes.NewReader(up.Data), up.MIME); err != nil {
		return err
	}

	a, err := e.store.CreateAsset(c.Context, site.NewAsset{
		SiteID:   s.ID,
		Path:     key,
		MIME:     up.MIME,
		Size:     int64(len(up.Data)),
		Metadata: meta,
	})
	if err != nil {
		_ = blobs.Delete(c.Context, key)
		return err
	}
	if err := e.store.AttachLogo(c.Context, s.ID, a.ID); err != nil {
		return err
	}

	zap.S().Infow("logo attached", "site", s.Slug, "asset", a.ID, "key", key)
	return printJSON(c.App.Writer, map[string]any{
		"asset":   a.ID,
		"url":     blobs.URL(key),
		"palette": up.Palette,
	})
}

func removeLogo(c *cli.Context, e *env) error {
	s, err := siteFor(c, e, c.Args().First())
	if err != nil {
		return err
	}
	p, err := e.store.ProfileBySite(c.Context, s.ID)
	if err != nil {
		return err
	}
	if p.LogoAssetID == nil {
		fmt.Fprintf(c.App.Writer, "%s: no logo\n", s.Slug)
		return nil
	}

	if err := e.store.DetachLogo(c.Context, s.ID); err != nil {
		return err
	}
	a, err := e.store.DeleteAsset(c.Context, *p.LogoAssetID)
	if err != nil {
		return err
	}
	blobs, err := e.blobs()
	if err != nil {
		return err
	}
	if err := blobs.Delete(c.Context, a.Path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: logo removed\n", s.Slug)
	return nil
}
