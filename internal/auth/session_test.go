package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var sessionSecret = []byte("0123456789abcdef0123456789abcdef")

func newSessionCtx(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

// carryCookies copies Set-Cookie output onto a fresh request context, the
// way a browser would on the next request.
func carryCookies(t *testing.T, w *httptest.ResponseRecorder) *gin.Context {
	t.Helper()
	c, _ := newSessionCtx(t)
	for _, ck := range w.Result().Cookies() {
		c.Request.AddCookie(ck)
	}
	return c
}

func TestCookieSession_RoundTrip(t *testing.T) {
	s := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, false)

	c, w := newSessionCtx(t)
	if err := s.Set(c, 42); err != nil {
		t.Fatalf("Set: %v", err)
	}

	next := carryCookies(t, w)
	uid, ok := s.Get(next)
	if !ok || uid != 42 {
		t.Fatalf("Get: got (%d, %v), want (42, true)", uid, ok)
	}
}

func TestCookieSession_SetsSecurityAttributes(t *testing.T) {
	s := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, true)

	c, w := newSessionCtx(t)
	if err := s.Set(c, 1); err != nil {
		t.Fatal(err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	ck := cookies[0]
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
		t.Fatalf("cookie attributes wrong: %+v", ck)
	}
	if ck.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("MaxAge: got %d", ck.MaxAge)
	}
}

func TestCookieSession_RejectsTampering(t *testing.T) {
	s := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, false)

	c, w := newSessionCtx(t)
	if err := s.Set(c, 42); err != nil {
		t.Fatal(err)
	}
	encoded := w.Result().Cookies()[0].Value

	// Flip a character in the signed payload.
	tampered := encoded[:len(encoded)-2] + strings.Repeat("A", 2)

	next, _ := newSessionCtx(t)
	next.Request.AddCookie(&http.Cookie{Name: "mindmate_session", Value: tampered})
	if uid, ok := s.Get(next); ok {
		t.Fatalf("tampered cookie accepted as user %d", uid)
	}
}

func TestCookieSession_RejectsForeignKey(t *testing.T) {
	a := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, false)
	b := NewCookieSession([]byte("another-secret-key-entirely-here"), "mindmate_session", 24*time.Hour, false)

	c, w := newSessionCtx(t)
	if err := a.Set(c, 9); err != nil {
		t.Fatal(err)
	}

	next := carryCookies(t, w)
	if uid, ok := b.Get(next); ok {
		t.Fatalf("cookie signed with a different key accepted as user %d", uid)
	}
}

// An empty HMAC key makes securecookie refuse every encode, so a session can
// never be issued. Config guarantees a non-empty secret; this pins down why.
func TestCookieSession_EmptyKeyCannotIssue(t *testing.T) {
	s := NewCookieSession(nil, "mindmate_session", 24*time.Hour, false)

	c, w := newSessionCtx(t)
	if err := s.Set(c, 42); err == nil {
		t.Fatal("Set succeeded with an empty key")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("cookie written despite encode failure")
	}
}

func TestCookieSession_AbsentCookie(t *testing.T) {
	s := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, false)
	c, _ := newSessionCtx(t)
	if _, ok := s.Get(c); ok {
		t.Fatal("absent cookie resolved a session")
	}
}

func TestCookieSession_Clear(t *testing.T) {
	s := NewCookieSession(sessionSecret, "mindmate_session", 24*time.Hour, false)

	c, w := newSessionCtx(t)
	s.Clear(c)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 || cookies[0].Value != "" {
		t.Fatalf("clear did not expire the cookie: %+v", cookies)
	}
}
