package theme

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestDefaultRegistryKeys(t *testing.T) {
	r := Default()
	got := strings.Join(r.Keys(), ",")
	if got != "classic,studio" {
		t.Fatalf("keys = %s", got)
	}
	if r.Has("partials") {
		t.Fatal("partials dir must not be a key")
	}
}

func TestLookupUnknownKey(t *testing.T) {
	_, err := Default().Lookup("neon")
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("want ErrUnknownTemplate, got %v", err)
	}
}

func TestLookupParsesAndCaches(t *testing.T) {
	r := Default()
	for _, key := range r.Keys() {
		th, err := r.Lookup(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		again, _ := r.Lookup(key)
		if th != again {
			t.Fatalf("%s: second lookup should hit the cache", key)
		}
		if got := th.AssetFunc("site.css"); got != "/static/themes/"+key+"/assets/site.css" {
			t.Fatalf("asset url %s", got)
		}
	}
}

func TestKeyOverridesSharedPartial(t *testing.T) {
	fsys := fstest.MapFS{
		"partials/p.html": {Data: []byte(`{{ define "greet" }}shared{{ end }}`)},
		"plain/layout.html": {Data: []byte(`{{ define "layout" }}[{{ template "greet" }}]{{ end }}`)},
		"fancy/layout.html": {Data: []byte(`{{ define "layout" }}[{{ template "greet" }}]{{ end }}`)},
		"fancy/greet.html":  {Data: []byte(`{{ define "greet" }}fancy{{ end }}`)},
		"broken/readme.txt": {Data: []byte("no layout")},
	}
	r, err := NewRegistry(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if r.Has("broken") {
		t.Fatal("dir without layout.html is not a key")
	}

	for key, want := range map[string]string{"plain": "[shared]", "fancy": "[fancy]"} {
		th, err := r.Lookup(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		var buf bytes.Buffer
		if err := th.Execute(&buf, nil); err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if buf.String() != want {
			t.Fatalf("%s rendered %q, want %q", key, buf.String(), want)
		}
	}
}

func TestLookupRequiresLayoutDefinition(t *testing.T) {
	fsys := fstest.MapFS{
		"odd/layout.html": {Data: []byte(`{{ define "page" }}x{{ end }}`)},
	}
	r, err := NewRegistry(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Lookup("odd"); err == nil {
		t.Fatal("expected error for set without a layout template")
	}
}

func TestNewRegistryEmpty(t *testing.T) {
	if _, err := NewRegistry(fstest.MapFS{}); err == nil {
		t.Fatal("expected error for empty tree")
	}
}

func TestAssetHandler(t *testing.T) {
	h := http.StripPrefix("/static/themes", Default().AssetHandler())

	cases := []struct {
		path string
		code int
	}{
		{"/static/themes/classic/assets/site.css", http.StatusOK},
		{"/static/themes/studio/assets/site.css", http.StatusOK},
		{"/static/themes/classic/layout.html", http.StatusNotFound},
		{"/static/themes/classic/assets/", http.StatusNotFound},
		{"/static/themes/partials/sections.html", http.StatusNotFound},
		{"/static/themes/neon/assets/site.css", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.code {
			t.Errorf("%s: code %d, want %d", c.path, rec.Code, c.code)
		}
	}
}

func TestCollectHTML(t *testing.T) {
	fsys := fstest.MapFS{
		"a/x.html":     {},
		"a/b/y.HTML":   {},
		"a/b/z.css":    {},
		"other/q.html": {},
	}
	files, err := CollectHTML(fsys, "a")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(files, ",") != "a/b/y.HTML,a/x.html" {
		t.Fatalf("files = %v", files)
	}
	if files, err := CollectHTML(fsys, "missing"); err != nil || files != nil {
		t.Fatalf("missing root: %v %v", files, err)
	}
}

func TestFuncs(t *testing.T) {
	if got := string(telHref(" +1 (555) 010-2030 ")); got != "tel:+15550102030" {
		t.Fatalf("tel = %s", got)
	}
	if got := initial("  acme"); got != "A" {
		t.Fatalf("initial = %s", got)
	}
	if initial("") != "" {
		t.Fatal("empty initial")
	}
}
