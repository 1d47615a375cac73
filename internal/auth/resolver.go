package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// pseudoTokenPrefix marks a token synthesized from a live cookie session for
// code paths that only understand tokens (backward compatibility).
const pseudoTokenPrefix = "session_"

// maxBodyPeek caps how much of a request body the body-token strategy reads.
const maxBodyPeek = 1 << 20

// TokenStrategy extracts a candidate token from a request. Strategies are
// tried in order; the first non-empty candidate wins.
type TokenStrategy func(c *gin.Context) string

// BearerHeaderToken reads "Authorization: Bearer <token>".
func BearerHeaderToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// BodyToken reads a "token" field from a JSON request body. The body is
// buffered and restored so downstream handlers can still bind it.
func BodyToken(c *gin.Context) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	if !strings.Contains(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyPeek))
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Token
}

// QueryToken reads a "token" query parameter.
func QueryToken(c *gin.Context) string {
	return c.Query("token")
}

// SessionPseudoToken synthesizes "session_<uid>" from a live cookie session.
func SessionPseudoToken(session *CookieSession) TokenStrategy {
	return func(c *gin.Context) string {
		if uid, ok := session.Get(c); ok {
			return pseudoTokenPrefix + strconv.FormatUint(uint64(uid), 10)
		}
		return ""
	}
}

// Authenticator arbitrates between the two credential mechanisms: an ordered
// list of token-extraction strategies validated against the token store,
// with the cookie session as the final fallback.
type Authenticator struct {
	Tokens     TokenStore
	Session    *CookieSession
	strategies []TokenStrategy
}

// NewAuthenticator wires the default strategy order: bearer header, JSON
// body field, query parameter, session pseudo-token.
func NewAuthenticator(tokens TokenStore, session *CookieSession) *Authenticator {
	return &Authenticator{
		Tokens:  tokens,
		Session: session,
		strategies: []TokenStrategy{
			BearerHeaderToken,
			BodyToken,
			QueryToken,
			SessionPseudoToken(session),
		},
	}
}

// CandidateToken returns the first non-empty token candidate, or "".
func (a *Authenticator) CandidateToken(c *gin.Context) string {
	for _, s := range a.strategies {
		if t := s(c); t != "" {
			return t
		}
	}
	return ""
}

// Resolve extracts and validates a credential, returning the acting user id.
// A pseudo-token resolves through the cookie session it was synthesized
// from; real candidates resolve through the token store. When no token
// resolves, the cookie session itself is the fallback.
func (a *Authenticator) Resolve(c *gin.Context) (uint, bool) {
	if token := a.CandidateToken(c); token != "" {
		if uid, ok := a.resolveToken(c, token); ok {
			return uid, true
		}
	}
	return a.Session.Get(c)
}

func (a *Authenticator) resolveToken(c *gin.Context, token string) (uint, bool) {
	if strings.HasPrefix(token, pseudoTokenPrefix) {
		// Only trust the pseudo form when the signed cookie agrees with it.
		uid, ok := a.Session.Get(c)
		if !ok {
			return 0, false
		}
		if want, err := strconv.ParseUint(strings.TrimPrefix(token, pseudoTokenPrefix), 10, 64); err == nil && uint(want) == uid {
			return uid, true
		}
		return 0, false
	}
	return a.Tokens.Resolve(token)
}

// Revoke deletes the resolved token (if any) and clears the cookie session.
// Idempotent: revoking with no live credential is not an error.
func (a *Authenticator) Revoke(c *gin.Context) {
	if token := a.CandidateToken(c); token != "" && !strings.HasPrefix(token, pseudoTokenPrefix) {
		a.Tokens.Revoke(token)
	}
	a.Session.Clear(c)
}
