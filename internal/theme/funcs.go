//
//  internal/theme/funcs.go
//
//  Template functions every set is parsed with.  Helpers stay short so
//  layout authors are not poking through nested structs or building
//  URLs by hand.
//

package theme

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FuncMap returns the template function map for one key.
func FuncMap(asset func(string) string) template.FuncMap {
	return template.FuncMap{
		"asset": asset,

		// richtext marks a body as trusted HTML.  Bodies are sanitized by
		// the pagedata decoder before they ever reach a template.
		"richtext": func(s string) template.HTML { return template.HTML(s) },

		"tel":     telHref,
		"mailto":  func(s string) string { return "mailto:" + strings.TrimSpace(s) },
		"initial": initial,
	}
}

// telHref keeps digits and a leading plus.  The result is typed as a URL
// because html/template only lets http, https, and mailto through href.
func telHref(phone string) template.URL {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return template.URL("tel:" + b.String())
}

// initial is the upper-cased first letter, used as a monogram when a site
// has no logo.
func initial(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}
