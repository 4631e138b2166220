// Package theme holds the template sets a tenant site can be rendered with.
// A Theme combines:
//
//   - Key        – the template key stored on the site row (for example,
//     “classic”).
//   - Templates  – the parsed set, shared section partials included.
//   - AssetFunc  – helper injected into templates so they can resolve
//     `{{ asset "site.css" }}` to a URL.
//
// Sets are embedded in the binary under templates/<key>/, with partials
// common to every key under templates/partials/.  A key is implemented when
// templates/<key>/layout.html exists.
package theme

import (
	"io"
	"path"
)

// AssetPrefix is the public path theme assets are served under.  It sits
// inside a routing bypass prefix so tenant rewrites never touch it.
const AssetPrefix = "/static/themes/"

// Theme is returned by the Registry once all templates are parsed.
type Theme struct {
	Key       string
	Templates Executor
	AssetFunc func(string) string
}

// Executor is the subset of *template.Template a Theme needs.
type Executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// New constructs a Theme with an AssetFunc that points to its assets folder.
func New(key string, tpl Executor) *Theme {
	return &Theme{
		Key:       key,
		Templates: tpl,
		AssetFunc: assetFunc(key),
	}
}

// Execute runs the root "layout" template.
func (t *Theme) Execute(w io.Writer, data any) error {
	return t.Templates.ExecuteTemplate(w, "layout", data)
}

func assetFunc(key string) func(string) string {
	prefix := AssetPrefix + key + "/assets/"
	return func(p string) string {
		return prefix + path.Clean("/" + p)[1:]
	}
}
