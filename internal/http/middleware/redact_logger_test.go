package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCtx(req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestRedactHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer super-secret")
	req.Header.Set("X-Api-Key", "raw-key")
	req.Header.Set("Accept", "application/json")
	c := newCtx(req)

	if got := redactHeader(c, "Authorization"); got != "Bearer [REDACTED]" {
		t.Errorf("authorization: %q", got)
	}
	if got := redactHeader(c, "X-Api-Key"); got != "[REDACTED]" {
		t.Errorf("api key: %q", got)
	}
	if got := redactHeader(c, "Accept"); got != "application/json" {
		t.Errorf("non-sensitive header: %q", got)
	}
	if got := redactHeader(c, "X-Missing"); got != "" {
		t.Errorf("absent header: %q", got)
	}
}

func TestRedactCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "mindmate_session", Value: "signed-blob"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	c := newCtx(req)

	got := redactCookies(c)
	if strings.Contains(got, "signed-blob") || strings.Contains(got, "dark") {
		t.Fatalf("cookie values leaked: %q", got)
	}
	if !strings.Contains(got, "mindmate_session=[REDACTED]") {
		t.Errorf("cookie name missing: %q", got)
	}

	if got := redactCookies(newCtx(httptest.NewRequest(http.MethodGet, "/x", nil))); got != "" {
		t.Errorf("no cookies: %q", got)
	}
}

func TestRedactQuery(t *testing.T) {
	got := redactQuery("token=super-secret&limit=5")
	if strings.Contains(got, "super-secret") {
		t.Fatalf("token leaked: %q", got)
	}
	if !strings.Contains(got, "token=%5BREDACTED%5D") && !strings.Contains(got, "token=[REDACTED]") {
		t.Errorf("token not masked: %q", got)
	}
	if !strings.Contains(got, "limit=5") {
		t.Errorf("benign param dropped: %q", got)
	}

	if got := redactQuery("limit=5"); got != "limit=5" {
		t.Errorf("token-free query: %q", got)
	}
	if got := redactQuery("token=%zz"); got != "[UNPARSEABLE]" {
		t.Errorf("unparseable query: %q", got)
	}
}

// The access logger must scrub only its own log fields; the request the
// downstream auth gate sees has to stay intact.
func TestRedactingLogger_DoesNotMutateRequest(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RedactingLogger())

	var seenAuth, seenCookie string
	r.GET("/x", func(c *gin.Context) {
		seenAuth = c.GetHeader("Authorization")
		ck, _ := c.Cookie("mindmate_session")
		seenCookie = ck
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x?token=abc", nil)
	req.Header.Set("Authorization", "Bearer real-token")
	req.AddCookie(&http.Cookie{Name: "mindmate_session", Value: "blob"})
	doRequest(r, req)

	if seenAuth != "Bearer real-token" {
		t.Errorf("authorization mutated: %q", seenAuth)
	}
	if seenCookie != "blob" {
		t.Errorf("cookie mutated: %q", seenCookie)
	}
}
