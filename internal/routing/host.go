// internal/routing/host.go
//
// Host header normalization.
//
// Rules
// -----
// 1. Trim surrounding whitespace and lower-case everything.
// 2. Strip a trailing ":<port>" when the port is all digits.  IPv6 literals
//    keep their brackets: "[::1]:8080" becomes "[::1]".
// 3. Strip one leading "www.".
//
// Empty or whitespace-only input yields "".  The function never fails.

package routing

import "strings"

// NormalizeHost canonicalizes a raw Host header value.
func NormalizeHost(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if h == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(h, "["):
		if end := strings.IndexByte(h, ']'); end >= 0 && isPort(h[end+1:]) {
			h = h[:end+1]
		}
	default:
		// A bare IPv6 address has several colons and no port to strip.
		if i := strings.LastIndexByte(h, ':'); i >= 0 && strings.Count(h, ":") == 1 && isPort(h[i:]) {
			h = h[:i]
		}
	}

	return strings.TrimPrefix(h, "www.")
}

// isPort reports whether s is ":" followed by one or more digits.
func isPort(s string) bool {
	if len(s) < 2 || s[0] != ':' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
