// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only ChatMessage model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

// CreateMessage appends a message row. The autoincrement ID is monotonic
// with respect to insertion order for a given (user, avatar) pair.
func CreateMessage(ctx context.Context, db *gorm.DB, userID, avatarID uint, sender, message string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		UserID:    userID,
		AvatarID:  avatarID,
		Sender:    sender,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// RecentMessages returns at most limit of the newest messages for the user,
// optionally filtered to one avatar (avatarID == 0 means all), re-ordered
// ascending so the most recent message comes last. The store fetches
// descending and reverses before returning.
func RecentMessages(ctx context.Context, db *gorm.DB, userID, avatarID uint, limit int) ([]domain.ChatMessage, error) {
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if avatarID != 0 {
		q = q.Where("avatar_id = ?", avatarID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.ChatMessage
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// UserMessagesForDay returns the text of the user's own messages (across all
// avatars) whose timestamp falls on the given calendar day, oldest first.
// Used by mood inference.
func UserMessagesForDay(ctx context.Context, db *gorm.DB, userID uint, day time.Time) ([]string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var out []string
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("user_id = ? AND sender = ? AND created_at >= ? AND created_at < ?",
			userID, domain.SenderUser, start, end).
		Order("created_at ASC, id ASC").
		Pluck("message", &out).Error
	return out, err
}
