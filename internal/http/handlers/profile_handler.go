// Profile HTTP handlers.
//
//   - GET  /api/profile
//   - POST /api/profile  (partial update)
//
// The update uses pointer fields so absent keys leave columns untouched; an
// empty body is a success no-op.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/repo"
)

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Only the fields present in the body are written.
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Gender          *string `json:"gender"`
	AvatarPath      *string `json:"avatar_path"`
	BirthDate       *string `json:"birth_date"`
	Goal            *string `json:"goal"`
	SelfDescription *string `json:"self_description"`
}

// GetProfile handles GET /api/profile.
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.accountSvc.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "profile": profile})
}

// UpdateProfile handles POST /api/profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	patch := repo.ProfilePatch{
		Name:            req.Name,
		Gender:          req.Gender,
		AvatarPath:      req.AvatarPath,
		BirthDate:       req.BirthDate,
		Goal:            req.Goal,
		SelfDescription: req.SelfDescription,
	}

	if err := h.accountSvc.UpdateProfile(c.Request.Context(), currentUser(c), patch); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}
