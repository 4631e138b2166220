// internal/requestinfo/requestinfo.go
//
// Per-request visitor facts: parsed User-Agent, client IP with optional
// GeoLite2 city, the URL as the visitor sent it, and arrival time.
//
// Notes
// -----
// • Values hold plain strings and copies only, so access logs and
//   templates can read them freely.
// • Geo lookup is skipped when no database is configured.
package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string
	Browser     string // uasurfer name, e.g. BrowserChrome
	Version     string
	OS          string // e.g. OSAndroid
	OSVersion   string
	Device      string // Desktop, Mobile, Tablet, Bot, Other
	Platform    string
	IsBot       bool
	PrimaryLang string // from Accept-Language, e.g. "en"
}

// Geo is the client address plus whatever the city database knows about
// it.  Country and city stay empty on a miss.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// RequestInfo is stored on the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // copy taken before tenant rewriting
	Timestamp time.Time
}

// GeoDB is the subset of *geoip2.Reader used here.
type GeoDB interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenGeo opens a GeoLite2-City database.  An empty path disables lookups
// and returns a nil GeoDB.  The concrete value is a *geoip2.Reader, which
// callers may Close on shutdown via io.Closer.
func OpenGeo(dbPath string) (GeoDB, error) {
	if dbPath == "" {
		return nil, nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	return r, nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the value Enrich stored, or nil outside Enrich.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// ParseUA converts a raw header into our UA struct using uasurfer.
func ParseUA(uaHeader, acceptLang string) UA {
	u := surfer.Parse(uaHeader)

	out := UA{
		Raw:         uaHeader,
		Browser:     u.Browser.Name.String(),
		Version:     versionString(u.Browser.Version),
		OS:          u.OS.Name.String(),
		OSVersion:   versionString(u.OS.Version),
		Platform:    u.OS.Platform.String(),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}

	switch {
	case out.IsBot:
		out.Device = "Bot"
	case u.DeviceType == surfer.DeviceComputer:
		out.Device = "Desktop"
	case u.DeviceType == surfer.DeviceTablet:
		out.Device = "Tablet"
	case u.DeviceType == surfer.DevicePhone, u.DeviceType == surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders a version in dotted form while trimming trailing
// zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

// primaryLang returns the first Accept-Language tag, lower-cased.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

// lookupGeo never fails; a miss leaves only the IP set.
func lookupGeo(db GeoDB, ip net.IP) Geo {
	if db == nil || ip == nil {
		return Geo{IP: ip}
	}
	g := Geo{IP: ip}
	if rec, err := db.City(ip); err == nil {
		g.CountryISO = rec.Country.IsoCode
		g.City = rec.City.Names["en"]
	}
	return g
}
