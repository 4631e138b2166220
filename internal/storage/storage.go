// Package storage keeps uploaded tenant assets (logos today) as blobs.
//
// Two backends share the Store interface: Local writes under a directory
// that cmd/web serves at /assets/, and S3 uploads to any S3-compatible
// bucket (AWS, Cloudflare R2, MinIO).  The backend is chosen by
// storage.driver in config.  Keys are slash-separated and relative, e.g.
// "sites/<site id>/logo/<uuid>.png".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when deleting a key that does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrInvalidKey is returned for keys that are empty, absolute, or escape
// the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Store is a blob store addressed by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Config selects and configures a backend.
type Config struct {
	Driver        string // "local" or "s3"
	LocalDir      string
	PublicBaseURL string
	S3            S3Config
}

// New builds the backend named by cfg.Driver.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	case "s3":
		return NewS3(cfg.S3, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// LogoKey returns a fresh key for a logo of siteID.  ext includes the dot.
func LogoKey(siteID, ext string) string {
	return path.Join("sites", siteID, "logo", uuid.NewString()+strings.ToLower(ext))
}

// ExtFor maps an image content type to a file extension.
func ExtFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}

// cleanKey validates key and returns its canonical form.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return c, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
