// internal/theme/registry.go
//
// Registry of implemented template keys.
//
// Context
// -------
// Every site row names a template key.  Only keys with a layout on disk are
// implemented; anything else is refused with ErrUnknownTemplate so the HTTP
// layer can answer 404 instead of guessing at a look.
//
// Workflow
// --------
//   - NewRegistry scans the root of fsys once for <key>/layout.html.
//   - Lookup parses partials/*.html plus <key>/**/*.html on first use and
//     keeps the set in an LRU.
//   - AssetHandler serves <key>/assets/* for the AssetFunc URLs.
//
// Notes
// -----
// • Two first lookups of the same key may both parse; the later Add wins
//   and both sets are equivalent.

package theme

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"github.com/yanizio/sitekit/internal/cache"
)

//go:embed templates
var embedded embed.FS

// ErrUnknownTemplate is returned by Lookup for keys with no layout.
var ErrUnknownTemplate = errors.New("theme: unknown template")

const sharedDir = "partials"

// Registry discovers and loads template sets.
type Registry struct {
	fsys fs.FS
	keys map[string]bool
	sets *cache.LRU[string, *Theme]
}

// Default returns a Registry over the embedded templates.
func Default() *Registry {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	r, err := NewRegistry(sub)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry indexes the template keys in fsys.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("theme: read templates: %w", err)
	}
	keys := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() || e.Name() == sharedDir {
			continue
		}
		if _, err := fs.Stat(fsys, e.Name()+"/layout.html"); err == nil {
			keys[e.Name()] = true
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("theme: no templates found")
	}
	return &Registry{
		fsys: fsys,
		keys: keys,
		sets: cache.New[string, *Theme](len(keys) + 4),
	}, nil
}

// Keys lists the implemented template keys, sorted.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether key is implemented.
func (r *Registry) Has(key string) bool { return r.keys[key] }

// Lookup returns the parsed set for key.
func (r *Registry) Lookup(key string) (*Theme, error) {
	if !r.keys[key] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}
	if th, ok := r.sets.Get(key); ok {
		return th, nil
	}

	shared, err := CollectHTML(r.fsys, sharedDir)
	if err != nil {
		return nil, fmt.Errorf("theme: collect shared: %w", err)
	}
	own, err := CollectHTML(r.fsys, key)
	if err != nil {
		return nil, fmt.Errorf("theme: collect %s: %w", key, err)
	}

	// Shared partials first so a key may override any of them.
	tpl := template.New(key).Funcs(FuncMap(assetFunc(key)))
	if len(shared) > 0 {
		if _, err := tpl.ParseFS(r.fsys, shared...); err != nil {
			return nil, fmt.Errorf("theme: parse shared: %w", err)
		}
	}
	if _, err := tpl.ParseFS(r.fsys, own...); err != nil {
		return nil, fmt.Errorf("theme: parse %s: %w", key, err)
	}
	if tpl.Lookup("layout") == nil {
		return nil, fmt.Errorf("theme: %s defines no layout", key)
	}

	th := New(key, tpl)
	r.sets.Add(key, th)
	return th, nil
}

// AssetHandler serves <key>/assets/<file> from the template tree.  Mount it
// with http.StripPrefix(strings.TrimSuffix(AssetPrefix, "/"), ...).
func (r *Registry) AssetHandler() http.Handler {
	files := http.FileServer(http.FS(r.fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, rest, ok := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
		if !ok || !r.keys[key] || !strings.HasPrefix(rest, "assets/") ||
			strings.HasSuffix(rest, "/") || strings.Contains(rest, "..") {
			http.NotFound(w, req)
			return
		}
		files.ServeHTTP(w, req)
	})
}
