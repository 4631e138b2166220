// internal/pagedata/pagedata.go
//
// Page-content model, validator, and decoder.
//
// Context
// -------
// Every page row stores its content as one JSON document:
//
//	{"seo": {"title": "…", "description": "…"}, "sections": [{…}, …]}
//
// Editors write it, the public site reads it on every request.  The read
// path is forgiving: a document that fails the shallow check is replaced by
// curated defaults upstream (see internal/resolve), and individual sections
// that are malformed degrade to Unknown instead of failing the page.
//
// Workflow
// --------
//  1. Parse decodes the raw bytes into an untyped tree, numbers kept as
//     json.Number.
//  2. Validate checks the top-level shape only.
//  3. SanitizeSections drops non-objects and entries without a type.
//  4. Each surviving entry is decoded from its stored bytes into its typed
//     Section variant.
//
// Keys the model does not declare, at the top level and inside typed
// sections, are kept as raw JSON and written back by MarshalJSON.
//
// Notes
// -----
// • Validate is shallow on purpose.  Per-section field checks live in the
//   variant structs (validator tags) and never reject the whole page.
package pagedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalid marks a document whose top-level shape is wrong.
var ErrInvalid = errors.New("pagedata: invalid page data")

// PageKey names one of the fixed pages every site owns.
type PageKey string

const (
	Home    PageKey = "home"
	About   PageKey = "about"
	Contact PageKey = "contact"
)

// PageKeys lists the fixed page keys in navigation order.
func PageKeys() []PageKey { return []PageKey{Home, About, Contact} }

// Valid reports whether k is one of the fixed keys.
func (k PageKey) Valid() bool {
	switch k {
	case Home, About, Contact:
		return true
	}
	return false
}

// SEO holds the per-page head metadata.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PageData is the typed form of a page document.
type PageData struct {
	SEO      SEO       `json:"seo"`
	Sections []Section `json:"sections"`

	extra map[string]json.RawMessage
}

// MarshalJSON always emits a sections array, never null.
func (p PageData) MarshalJSON() ([]byte, error) {
	type wire struct {
		SEO      SEO               `json:"seo"`
		Sections []json.RawMessage `json:"sections"`
	}
	w := wire{SEO: p.SEO, Sections: make([]json.RawMessage, 0, len(p.Sections))}
	for _, s := range p.Sections {
		b, err := marshalSection(s)
		if err != nil {
			return nil, err
		}
		w.Sections = append(w.Sections, b)
	}
	out, err := json.Marshal(w)
	if err != nil || len(p.extra) == 0 {
		return out, err
	}
	return appendFields(out, p.extra)
}

// UnmarshalJSON runs the full Parse pipeline.
func (p *PageData) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Validate performs the shallow shape check on an untyped document.  It
// returns nil, or an error wrapping ErrInvalid.
func Validate(v any) error {
	doc, ok := v.(map[string]any)
	if !ok || doc == nil {
		return fmt.Errorf("%w: document is not an object", ErrInvalid)
	}
	if seo, ok := doc["seo"].(map[string]any); !ok || seo == nil {
		return fmt.Errorf("%w: seo is not an object", ErrInvalid)
	}
	if _, ok := doc["sections"].([]any); !ok {
		return fmt.Errorf("%w: sections is not an array", ErrInvalid)
	}
	return nil
}

// SanitizeSections keeps only non-null objects that carry a "type" key.
// Order is preserved.
func SanitizeSections(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if obj, ok := sectionObject(it); ok {
			out = append(out, obj)
		}
	}
	return out
}

func sectionObject(it any) (map[string]any, bool) {
	obj, ok := it.(map[string]any)
	if !ok || obj == nil {
		return nil, false
	}
	_, has := obj["type"]
	return obj, has
}

// Parse decodes, validates, sanitizes, and types a page document.
func Parse(raw []byte) (PageData, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return PageData{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return PageData{}, fmt.Errorf("%w: trailing data after document", ErrInvalid)
	}
	if err := Validate(tree); err != nil {
		return PageData{}, err
	}

	// The same document again, keeping each entry's stored bytes.
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return PageData{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(stored["sections"], &entries); err != nil {
		return PageData{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	doc := tree.(map[string]any)
	seo := doc["seo"].(map[string]any)
	items := doc["sections"].([]any)

	pd := PageData{
		SEO: SEO{
			Title:       stringField(seo, "title"),
			Description: stringField(seo, "description"),
		},
		Sections: make([]Section, 0, len(items)),
	}
	for i, it := range items {
		if obj, ok := sectionObject(it); ok {
			pd.Sections = append(pd.Sections, decodeSection(obj, entries[i]))
		}
	}

	delete(stored, "seo")
	delete(stored, "sections")
	if len(stored) > 0 {
		pd.extra = stored
	}
	return pd, nil
}

// Renderable drops Unknown entries, keeping order.
func Renderable(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if _, unknown := s.(Unknown); unknown {
			continue
		}
		out = append(out, s)
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
