// Chat HTTP handlers.
//
//   - GET  /api/chat/history  (?avatar_id=&limit=, default limit 50)
//   - POST /api/chat/send
//
// Send is a soft-success endpoint: when the upstream model fails, the reply
// is a persisted fallback string and the response is still 200 so clients
// render it like any other message.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/utils"
)

const defaultHistoryLimit = 50

// SendMessageRequest is the JSON payload for one chat turn.
type SendMessageRequest struct {
	Message  string `json:"message"`
	AvatarID uint   `json:"avatar_id"`
}

// ChatHistory handles GET /api/chat/history. avatar_id filters to one
// avatar; when absent, messages across all avatars are returned.
func (h *Handlers) ChatHistory(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), defaultHistoryLimit)
	avatarID := uint(utils.AtoiDefault(c.Query("avatar_id"), 0))

	history, err := h.chatSvc.History(c.Request.Context(), currentUser(c), avatarID, limit)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "history": history})
}

// SendMessage handles POST /api/chat/send.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	turn, err := h.chatSvc.SendMessage(c.Request.Context(), currentUser(c), req.AvatarID, req.Message)
	if err != nil {
		failService(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success":      true,
		"user_message": turn.UserMessage,
		"ai_message":   turn.AIMessage,
	})
}
