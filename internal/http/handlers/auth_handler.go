// Authentication HTTP handlers.
//
//   - POST /api/auth/register
//   - POST /api/auth/login
//   - POST /api/auth/logout
//   - GET  /api/auth/check
//
// Register and login issue both credentials at once: a bearer token in the
// response body and a signed cookie session on the response. Logout revokes
// whichever credential the request carried. Check is advisory and public: it
// reports {"authenticated": false} instead of failing for anonymous callers.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/http/middleware"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// LoginRequest is the JSON payload for logging in. LoginID accepts either
// the email or the username.
type LoginRequest struct {
	LoginID  string `json:"login_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	UserID  uint   `json:"user_id"`
	Token   string `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	user, token, err := h.accountSvc.Register(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		failService(c, err)
		return
	}

	if err := h.auth.Session.Set(c, user.ID); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("session cookie not set")
	}

	ok(c, http.StatusCreated, AuthResponse{Success: true, UserID: user.ID, Token: token})
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "login_id and password are required")
		return
	}

	user, token, err := h.accountSvc.Login(c.Request.Context(), strings.TrimSpace(req.LoginID), req.Password)
	if err != nil {
		failService(c, err)
		return
	}

	if err := h.auth.Session.Set(c, user.ID); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("session cookie not set")
	}

	ok(c, http.StatusOK, AuthResponse{Success: true, UserID: user.ID, Token: token})
}

// Logout handles POST /api/auth/logout. Revocation is idempotent: logging
// out without a live credential still succeeds.
func (h *Handlers) Logout(c *gin.Context) {
	h.auth.Revoke(c)
	ok(c, http.StatusOK, gin.H{"success": true})
}

// CheckAuth handles GET /api/auth/check. Public by design: anonymous callers
// get {"authenticated": false} with a 200.
func (h *Handlers) CheckAuth(c *gin.Context) {
	uid := currentUser(c)
	if uid == 0 {
		ok(c, http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.accountSvc.User(c.Request.Context(), uid)
	if err != nil {
		// Credential referenced a user that no longer exists.
		ok(c, http.StatusOK, gin.H{"authenticated": false})
		return
	}

	ok(c, http.StatusOK, gin.H{"authenticated": true, "user": user})
}
