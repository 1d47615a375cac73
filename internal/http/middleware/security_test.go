package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(false, 0))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: %q, want %q", header, got, want)
		}
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS emitted while disabled: %q", got)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(true, 3600))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains" {
		t.Errorf("HSTS: %q", got)
	}
}
