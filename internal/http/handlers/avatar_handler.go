// Avatar and persona HTTP handlers.
//
//   - GET    /api/avatar/personas
//   - GET    /api/avatar/list
//   - GET    /api/avatar/:id
//   - POST   /api/avatar/create
//   - PUT    /api/avatar/:id   (also POST, partial update)
//   - DELETE /api/avatar/:id
//
// All routes are ownership-scoped: an avatar belonging to another user is
// indistinguishable from one that does not exist.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/repo"
)

// CreateAvatarRequest is the JSON payload for creating an avatar.
type CreateAvatarRequest struct {
	AvatarName      string `json:"avatar_name" binding:"required,min=1,max=255"`
	AppearanceType  string `json:"appearance_type" binding:"required"`
	PersonaID       uint   `json:"persona_id" binding:"required"`
	CustomImagePath string `json:"custom_image_path"`
	CustomPersona   string `json:"custom_persona"`
}

// UpdateAvatarRequest is the JSON payload for a partial avatar update.
type UpdateAvatarRequest struct {
	AvatarName      *string `json:"avatar_name"`
	AppearanceType  *string `json:"appearance_type"`
	PersonaID       *uint   `json:"persona_id"`
	CustomImagePath *string `json:"custom_image_path"`
	CustomPersona   *string `json:"custom_persona"`
}

// avatarID parses the :id path parameter; 0 means invalid.
func avatarID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0
	}
	return uint(id)
}

// ListPersonas handles GET /api/avatar/personas.
func (h *Handlers) ListPersonas(c *gin.Context) {
	personas, err := h.avatarSvc.Personas(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "personas": personas})
}

// ListAvatars handles GET /api/avatar/list.
func (h *Handlers) ListAvatars(c *gin.Context) {
	avatars, err := h.avatarSvc.List(c.Request.Context(), currentUser(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "avatars": avatars})
}

// GetAvatar handles GET /api/avatar/:id.
func (h *Handlers) GetAvatar(c *gin.Context) {
	id := avatarID(c)
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid avatar id")
		return
	}

	avatar, err := h.avatarSvc.Get(c.Request.Context(), id, currentUser(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "avatar": avatar})
}

// CreateAvatar handles POST /api/avatar/create.
func (h *Handlers) CreateAvatar(c *gin.Context) {
	var req CreateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "avatar_name, appearance_type and persona_id are required")
		return
	}

	avatar, err := h.avatarSvc.Create(c.Request.Context(), currentUser(c),
		req.AvatarName, req.AppearanceType, req.PersonaID, req.CustomImagePath, req.CustomPersona)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"success": true, "avatar": avatar})
}

// UpdateAvatar handles PUT (or POST) /api/avatar/:id.
func (h *Handlers) UpdateAvatar(c *gin.Context) {
	id := avatarID(c)
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid avatar id")
		return
	}

	var req UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	patch := repo.AvatarPatch{
		AvatarName:      req.AvatarName,
		AppearanceType:  req.AppearanceType,
		PersonaID:       req.PersonaID,
		CustomImagePath: req.CustomImagePath,
		CustomPersona:   req.CustomPersona,
	}

	if err := h.avatarSvc.Update(c.Request.Context(), id, currentUser(c), patch); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}

// DeleteAvatar handles DELETE /api/avatar/:id. Deletion also removes the
// avatar's chat messages in the same transaction.
func (h *Handlers) DeleteAvatar(c *gin.Context) {
	id := avatarID(c)
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid avatar id")
		return
	}

	if err := h.avatarSvc.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}
