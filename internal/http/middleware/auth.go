package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/auth"
)

// publicPaths are reachable without a credential. Everything else behind the
// gate requires a resolved user.
var publicPaths = map[string]struct{}{
	"/health": {},
	"/metrics": {},
}

// publicAPISuffixes are the auth endpoints that must stay open under the
// configurable API base path (register, login, and the advisory check).
var publicAPISuffixes = []string{
	"/auth/register",
	"/auth/login",
	"/auth/check",
}

// AuthGate resolves the request credential through the authenticator and
// stores the user id in the context. Unauthenticated API requests get a 401
// JSON envelope; unauthenticated page requests are redirected to /login.
func AuthGate(a *auth.Authenticator, apiBasePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isPublic(path, apiBasePath) {
			// Still resolve so public handlers (auth check) can see who asks.
			if uid, ok := a.Resolve(c); ok {
				c.Set(UserIDKey, uid)
			}
			c.Next()
			return
		}

		uid, ok := a.Resolve(c)
		if !ok {
			if strings.HasPrefix(path, apiBasePath+"/") || path == apiBasePath {
				rid, _ := c.Get(requestIDKey)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"request_id": asString(rid),
					"code":       "unauthorized",
					"message":    "authentication required",
				})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Back-fill the cookie session when a bearer token authenticated the
		// request, so the session survives a later process restart.
		if _, live := a.Session.Get(c); !live {
			_ = a.Session.Set(c, uid)
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func isPublic(path, apiBasePath string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	if strings.HasPrefix(path, "/static/") {
		return true
	}
	for _, suffix := range publicAPISuffixes {
		if path == apiBasePath+suffix {
			return true
		}
	}
	return false
}
