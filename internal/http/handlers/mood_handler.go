// Mood calendar HTTP handlers.
//
//   - POST /api/mood/set
//   - POST /api/mood/auto-analyze
//   - GET  /api/mood/get    (?date=YYYY-MM-DD)
//   - GET  /api/mood/month  (?year=&month=, defaults to the current month)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/utils"
)

// SetMoodRequest is the JSON payload for manually recording a mood.
type SetMoodRequest struct {
	Date      string `json:"date" binding:"required"`
	MoodEmoji string `json:"mood_emoji" binding:"required"`
}

// AutoAnalyzeRequest is the JSON payload for mood inference. Date defaults
// to today when absent.
type AutoAnalyzeRequest struct {
	Date string `json:"date"`
}

// SetMood handles POST /api/mood/set.
func (h *Handlers) SetMood(c *gin.Context) {
	var req SetMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date and mood_emoji are required")
		return
	}

	if err := h.moodSvc.Set(c.Request.Context(), currentUser(c), req.Date, req.MoodEmoji); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}

// AutoAnalyzeMood handles POST /api/mood/auto-analyze. The body is optional;
// an empty or absent date means today.
func (h *Handlers) AutoAnalyzeMood(c *gin.Context) {
	var req AutoAnalyzeRequest
	// Body is optional; binding errors on an empty body are ignored.
	_ = c.ShouldBindJSON(&req)

	// The service resolves an empty date against its own clock; echo the
	// date it actually wrote rather than re-deriving it here.
	date, emoji, err := h.moodSvc.AutoAnalyze(c.Request.Context(), currentUser(c), req.Date)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "date": date, "mood_emoji": emoji})
}

// GetMood handles GET /api/mood/get.
func (h *Handlers) GetMood(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date is required")
		return
	}

	mood, err := h.moodSvc.Get(c.Request.Context(), currentUser(c), date)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "mood": mood})
}

// MonthMoods handles GET /api/mood/month. Fetching the current month also
// triggers today's auto-analysis when today has messages but no entry yet.
func (h *Handlers) MonthMoods(c *gin.Context) {
	now := time.Now()
	year := utils.AtoiDefault(c.Query("year"), now.Year())
	month := utils.AtoiDefault(c.Query("month"), int(now.Month()))

	if month < 1 || month > 12 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "month must be between 1 and 12")
		return
	}

	moods, err := h.moodSvc.Month(c.Request.Context(), currentUser(c), year, month)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "moods": moods})
}
