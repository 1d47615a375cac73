package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

// CookieSession is the secondary, longer-lived credential: a signed cookie
// carrying the user id, verified server-side with an HMAC key. It coexists
// with bearer tokens and survives process restarts.
type CookieSession struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge time.Duration
	secure bool
}

// NewCookieSession constructs a session codec. The secret is the HMAC key;
// it must be stable across restarts for existing cookies to stay valid.
func NewCookieSession(secret []byte, name string, maxAge time.Duration, secure bool) *CookieSession {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(int(maxAge.Seconds()))
	return &CookieSession{codec: sc, name: name, maxAge: maxAge, secure: secure}
}

// Set writes (or refreshes) the session cookie for userID.
func (s *CookieSession) Set(c *gin.Context, userID uint) error {
	encoded, err := s.codec.Encode(s.name, userID)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get returns the user id carried by a valid session cookie. ok is false
// when the cookie is absent, tampered with, or past its max age.
func (s *CookieSession) Get(c *gin.Context) (uint, bool) {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return 0, false
	}
	var userID uint
	if err := s.codec.Decode(s.name, raw, &userID); err != nil {
		return 0, false
	}
	return userID, userID != 0
}

// Clear expires the session cookie.
func (s *CookieSession) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
