package requestinfo

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestParseUA(t *testing.T) {
	ua := ParseUA(chromeMac, "en-US,en;q=0.9")
	if ua.Device != "Desktop" || ua.IsBot {
		t.Fatalf("chrome: %+v", ua)
	}
	if ua.Version != "124" {
		t.Fatalf("version = %q", ua.Version)
	}
	if ua.PrimaryLang != "en-us" {
		t.Fatalf("lang = %q", ua.PrimaryLang)
	}

	bot := ParseUA(googlebot, "")
	if !bot.IsBot || bot.Device != "Bot" {
		t.Fatalf("googlebot: %+v", bot)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(r).String(); got != "10.0.0.1" {
		t.Fatalf("remote addr: %s", got)
	}
	r.Header.Set("X-Real-Ip", "198.51.100.2")
	if got := clientIP(r).String(); got != "198.51.100.2" {
		t.Fatalf("x-real-ip: %s", got)
	}
	r.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9, 10.0.0.1")
	if got := clientIP(r).String(); got != "203.0.113.9" {
		t.Fatalf("xff: %s", got)
	}
}

type fakeGeo struct{ fail bool }

func (f fakeGeo) City(net.IP) (*geoip2.City, error) {
	if f.fail {
		return nil, errors.New("not found")
	}
	c := &geoip2.City{}
	c.Country.IsoCode = "US"
	c.City.Names = map[string]string{"en": "Chicago"}
	return c, nil
}

func TestLookupGeo(t *testing.T) {
	ip := net.ParseIP("203.0.113.9")
	if g := lookupGeo(fakeGeo{}, ip); g.CountryISO != "US" || g.City != "Chicago" {
		t.Fatalf("geo = %+v", g)
	}
	if g := lookupGeo(fakeGeo{fail: true}, ip); g.CountryISO != "" || !g.IP.Equal(ip) {
		t.Fatalf("miss = %+v", g)
	}
	if g := lookupGeo(nil, ip); !g.IP.Equal(ip) {
		t.Fatalf("nil db = %+v", g)
	}
}

func TestOpenGeoEmptyPathDisables(t *testing.T) {
	db, err := OpenGeo("")
	if err != nil || db != nil {
		t.Fatalf("got %v, %v", db, err)
	}
	if _, err := OpenGeo("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnrichAndAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var seen *RequestInfo
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		r.URL.Path = "/acme/about" // simulate tenant rewrite
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hi"))
	})
	h := Enrich(fakeGeo{})(AccessLog(zap.New(core))(inner))

	req := httptest.NewRequest(http.MethodGet, "http://acme.sitekit.app/about", nil)
	req.Header.Set("User-Agent", googlebot)
	req.RemoteAddr = "203.0.113.9:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.Geo.CountryISO != "US" || !seen.UA.IsBot {
		t.Fatalf("info = %+v", seen)
	}
	if seen.URL.Path != "/about" {
		t.Fatalf("info URL should be the pre-rewrite copy, got %s", seen.URL.Path)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 access line, got %d", len(entries))
	}
	f := entries[0].ContextMap()
	if f["status"] != int64(http.StatusTeapot) || f["path"] != "/about" || f["bot"] != true || f["bytes"] != int64(2) {
		t.Fatalf("fields = %v", f)
	}
}
