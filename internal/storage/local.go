package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores blobs under a directory.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates dir if needed.  baseURL is the public prefix the
// directory is served under, "/assets" when empty.
func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage: local dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if baseURL == "" {
		baseURL = "/assets"
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Dir is the root directory, for serving.
func (l *Local) Dir() string { return l.dir }

// Put writes r to key through a temp file and rename, so readers never see
// a partial blob.
func (l *Local) Put(_ context.Context, key string, r io.Reader, _ string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	dst := filepath.Join(l.dir, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %s: %w", k, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return os.Rename(tmp.Name(), dst)
}

// Delete removes key.
func (l *Local) Delete(_ context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.dir, filepath.FromSlash(k)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return err
}

// URL returns the public URL of key.
func (l *Local) URL(key string) string { return joinURL(l.baseURL, key) }
