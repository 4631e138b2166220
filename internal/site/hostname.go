package site

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yanizio/sitekit/internal/routing"
)

// hostnameRegex matches a DNS name of at least two labels with an
// alphabetic TLD.
var hostnameRegex = regexp.MustCompile(`^([a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// ValidateHostname checks a normalized custom-domain hostname.  Names on the
// platform domain itself are rejected because subdomain routing already
// serves them.
func ValidateHostname(h, platformDomain string) error {
	if h == "" || len(h) > 253 {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, h)
	}
	if !hostnameRegex.MatchString(h) {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, h)
	}
	if p := routing.NormalizeHost(platformDomain); p != "" {
		if h == p || strings.HasSuffix(h, "."+p) {
			return fmt.Errorf("%w: %q is on the platform domain", ErrInvalidHostname, h)
		}
	}
	return nil
}
