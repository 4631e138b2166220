// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo and writes
// the visitor access log.
//
/*
Context
--------
Enrich sits high in the chain, after chi's RealIP and before tenant
routing.  For every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Performs a GeoLite2 lookup when a database is configured.
  4. Stores a `*RequestInfo` value in `request.Context` under an
     unexported key.

AccessLog runs inside Enrich.  It snapshots the URL before routing
rewrites it, records status, size, and latency through chi's
WrapResponseWriter, and emits one INFO line per request together with the
visitor_requests_total counter.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/metrics"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich attaches *RequestInfo and forwards.  geo may be nil.
func Enrich(geo GeoDB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			u := *r.URL

			info := &RequestInfo{
				UA:        ParseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
				Geo:       lookupGeo(geo, ip),
				URL:       &u,
				Timestamp: time.Now().UTC(),
			}
			next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
		})
	}
}

// AccessLog logs one line per request.  Install it after Enrich.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.L()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			host, path := r.Host, r.URL.Path
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("host", host),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("dur", time.Since(start)),
				zap.String("req_id", middleware.GetReqID(r.Context())),
			}

			device, bot := "Other", false
			if info := FromContext(r.Context()); info != nil {
				device, bot = info.UA.Device, info.UA.IsBot
				fields = append(fields,
					zap.String("ip", ipString(info.Geo.IP)),
					zap.String("country", info.Geo.CountryISO),
					zap.String("browser", info.UA.Browser),
					zap.String("device", device),
					zap.Bool("bot", bot),
				)
			}
			metrics.VisitorRequests.WithLabelValues(device, strconv.FormatBool(bot)).Inc()
			log.Info("request", fields...)
		})
	}
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
