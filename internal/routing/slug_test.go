package routing

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Acme Plumbing & Heating": "acme-plumbing-heating",
		"  --Café Olé--  ":        "caf-ol",
		"Bob's 24/7 Locksmiths":   "bob-s-24-7-locksmiths",
		"":                        "site",
		"!!!":                     "site",
		"API":                     "site",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Fatalf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}

	long := MakeSlug(strings.Repeat("ab ", 40))
	if len(long) > MaxSlugLen || strings.HasSuffix(long, "-") {
		t.Fatalf("long slug not trimmed: %q", long)
	}
}

func TestValidSlug(t *testing.T) {
	for _, s := range []string{"acme", "acme-plumbing", "a1", "x"} {
		if !ValidSlug(s) {
			t.Fatalf("ValidSlug(%q) = false", s)
		}
	}
	for _, s := range []string{"", "-acme", "acme-", "ac--me", "Acme", "acme.co", "d", "api", strings.Repeat("a", 64)} {
		if ValidSlug(s) {
			t.Fatalf("ValidSlug(%q) = true", s)
		}
	}
}

func TestBuildPath(t *testing.T) {
	cases := []struct{ parent, slug, want string }{
		{"", "", "/"},
		{"", "about", "/about"},
		{"/acme/", "", "/acme"},
		{"acme", "/about/", "/acme/about"},
		{"/d/shop.biz", "contact", "/d/shop.biz/contact"},
	}
	for _, c := range cases {
		if got := BuildPath(c.parent, c.slug); got != c.want {
			t.Fatalf("BuildPath(%q, %q) = %q, want %q", c.parent, c.slug, got, c.want)
		}
	}
}
