// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MoodEntry
// model. Dates are zero-padded YYYY-MM-DD strings; month reads use a real
// half-open range rather than the legacy string-prefix filter (equivalent
// for well-formed dates, robust against formatting drift).
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

// UpsertMood writes the (userID, date) mood entry, replacing any prior entry
// for that day regardless of its source (last write wins).
func UpsertMood(ctx context.Context, db *gorm.DB, userID uint, date, emoji, source string) error {
	entry := domain.MoodEntry{
		UserID:    userID,
		Date:      date,
		MoodEmoji: emoji,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"mood_emoji", "source", "created_at"}),
	}).Create(&entry).Error
}

// GetMood fetches the mood entry for one day, or gorm.ErrRecordNotFound.
func GetMood(ctx context.Context, db *gorm.DB, userID uint, date string) (*domain.MoodEntry, error) {
	var m domain.MoodEntry
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MonthMoods returns the user's entries for one calendar month, ascending by
// date. The half-open [first-of-month, first-of-next-month) range compares
// correctly on the zero-padded date column.
func MonthMoods(ctx context.Context, db *gorm.DB, userID uint, year, month int) ([]domain.MoodEntry, error) {
	start := fmt.Sprintf("%04d-%02d-01", year, month)
	next := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	end := next.Format("2006-01-02")

	var out []domain.MoodEntry
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&out).Error
	return out, err
}
