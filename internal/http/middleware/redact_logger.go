// RedactingLogger: the access logger used in production wiring. It scrubs
// credentials from everything it logs without mutating the request, so the
// auth gate downstream still sees the real Authorization header and cookies.
//
// This service moves tokens in three places a naive logger would leak them:
// the Authorization header, the session cookie, and the "token" query
// parameter. All three are masked here.
package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// fully masked headers (lowercase)
var maskedHeaders = map[string]struct{}{
	"authorization": {},
	"set-cookie":    {},
	"x-api-key":     {},
}

// RedactingLogger logs one structured line per request with credentials
// scrubbed, and attaches a request-scoped zerolog.Logger (key "logger") for
// handlers to enrich. Level by outcome: error for 5xx or collected Gin
// errors, warn for 4xx, info otherwise.
func RedactingLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(mustGet(c, requestIDKey))).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("query", redactQuery(c.Request.URL.RawQuery)).
			Str("authorization", redactHeader(c, "Authorization")).
			Str("cookie", redactCookies(c)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()

		c.Set("logger", &l)

		c.Next()

		ev := l.With().
			Str("user_id", userIDString(c)).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

func mustGet(c *gin.Context, key string) interface{} {
	v, _ := c.Get(key)
	return v
}

// redactHeader masks the value of a sensitive header, keeping the auth
// scheme visible ("Bearer [REDACTED]") for debugging.
func redactHeader(c *gin.Context, name string) string {
	v := c.GetHeader(name)
	if v == "" {
		return ""
	}
	if _, ok := maskedHeaders[strings.ToLower(name)]; !ok {
		return v
	}
	if scheme, _, found := strings.Cut(v, " "); found {
		return scheme + " [REDACTED]"
	}
	return "[REDACTED]"
}

// redactCookies lists the cookie names present, masking every value. Names
// alone are enough to debug session problems.
func redactCookies(c *gin.Context) string {
	cookies := c.Request.Cookies()
	if len(cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		names = append(names, ck.Name+"=[REDACTED]")
	}
	return strings.Join(names, "; ")
}

// redactQuery masks the "token" query parameter while leaving the rest of
// the query string readable.
func redactQuery(raw string) string {
	if raw == "" || !strings.Contains(raw, "token") {
		return truncate(raw, maxQueryLogLength)
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return "[UNPARSEABLE]"
	}
	if _, ok := vals["token"]; ok {
		vals.Set("token", "[REDACTED]")
	}
	return truncate(vals.Encode(), maxQueryLogLength)
}
