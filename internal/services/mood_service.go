// Package services – MoodService
//
// This file implements the mood ledger: manual daily entries and automatic
// inference over the day's chat text. Inference asks the classifier for
// exactly one emoji from a closed set; a classifier failure never blocks the
// caller — the ledger falls back to the "happy" default instead.
//
// Upsert semantics are last-write-wins per (user, day) regardless of source,
// so an automatic run silently replaces a manual entry and vice versa
// (preserved legacy behavior).
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/llm"
)

// moodDateLayout is the canonical zero-padded ledger key.
const moodDateLayout = "2006-01-02"

// defaultMoodEmoji is stored when classification fails.
const defaultMoodEmoji = "😊"

// moodClassifierPrompt fixes the closed candidate set and the single-emoji
// output contract.
const moodClassifierPrompt = "You are an emotion analysis assistant. Based on the user's text, judge their " +
	"overall mood and return the single most fitting emoji. Return exactly one emoji and nothing else. " +
	"Choose from: 😊 (happy), 😢 (sad), 😌 (calm), 😤 (angry), 😰 (anxious), 🤔 (thoughtful), 😴 (tired), 🥳 (excited)."

// Classifier sampling: short output, low temperature.
const (
	moodMaxTokens   = 10
	moodTemperature = 0.1
)

// MoodStore defines the persistence contract required by MoodService.
type MoodStore interface {
	// UpsertMood replaces the (user, date) entry, last write wins.
	UpsertMood(ctx context.Context, db *gorm.DB, userID uint, date, emoji, source string) error

	// GetMood fetches one day's entry or gorm.ErrRecordNotFound.
	GetMood(ctx context.Context, db *gorm.DB, userID uint, date string) (*domain.MoodEntry, error)

	// MonthMoods returns one month's entries ascending by date.
	MonthMoods(ctx context.Context, db *gorm.DB, userID uint, year, month int) ([]domain.MoodEntry, error)

	// UserMessagesForDay returns the user's own message texts for a day.
	UserMessagesForDay(ctx context.Context, db *gorm.DB, userID uint, day time.Time) ([]string, error)
}

// MoodService maintains the daily mood calendar.
type MoodService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the ledger/conversation persistence contract.
	Store MoodStore
	// Model is the external classifier collaborator.
	Model llm.ChatCompleter

	// Now is the clock, injectable for tests. Nil means time.Now.
	Now func() time.Time
}

// NewMoodService constructs a MoodService.
func NewMoodService(db *gorm.DB, store MoodStore, model llm.ChatCompleter) *MoodService {
	return &MoodService{DB: db, Store: store, Model: model}
}

func (s *MoodService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Set records a manual mood entry, replacing any prior entry for that day.
func (s *MoodService) Set(ctx context.Context, userID uint, date, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return ErrValidation
	}
	day, err := time.Parse(moodDateLayout, date)
	if err != nil {
		return ErrValidation
	}
	return s.Store.UpsertMood(ctx, s.DB, userID, day.Format(moodDateLayout), emoji, domain.MoodSourceManual)
}

// Get returns one day's entry.
func (s *MoodService) Get(ctx context.Context, userID uint, date string) (*domain.MoodEntry, error) {
	if _, err := time.Parse(moodDateLayout, date); err != nil {
		return nil, ErrValidation
	}
	m, err := s.Store.GetMood(ctx, s.DB, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMoodNotFound
		}
		return nil, err
	}
	return m, nil
}

// AutoAnalyze infers the day's mood from the user's own messages across all
// avatars and persists it with source=auto. An empty date means "today" per
// the service clock; the resolved date is returned alongside the emoji so
// callers report exactly the day that was written. A day with no messages is
// ErrNoMessagesForDay and writes nothing; a classifier failure stores the
// default emoji instead of propagating.
func (s *MoodService) AutoAnalyze(ctx context.Context, userID uint, date string) (string, string, error) {
	if date == "" {
		date = s.now().Format(moodDateLayout)
	}
	day, err := time.Parse(moodDateLayout, date)
	if err != nil {
		return "", "", ErrValidation
	}
	date = day.Format(moodDateLayout)

	messages, err := s.Store.UserMessagesForDay(ctx, s.DB, userID, day)
	if err != nil {
		return "", "", err
	}
	if len(messages) == 0 {
		return "", "", ErrNoMessagesForDay
	}

	emoji := s.classify(ctx, strings.Join(messages, " "))
	if err := s.Store.UpsertMood(ctx, s.DB, userID, date, emoji, domain.MoodSourceAuto); err != nil {
		return "", "", err
	}
	return date, emoji, nil
}

// Month returns one month's entries. As a side effect, when today has no
// entry yet, it attempts an automatic analysis of today before returning —
// a day without messages is simply skipped.
func (s *MoodService) Month(ctx context.Context, userID uint, year, month int) ([]domain.MoodEntry, error) {
	moods, err := s.Store.MonthMoods(ctx, s.DB, userID, year, month)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(moodDateLayout)
	for _, m := range moods {
		if m.Date == today {
			return moods, nil
		}
	}
	if _, _, err := s.AutoAnalyze(ctx, userID, today); err != nil {
		// Nothing written today; the month read stands as-is.
		return moods, nil
	}
	return s.Store.MonthMoods(ctx, s.DB, userID, year, month)
}

// classify asks the model for one emoji, defaulting on any failure or empty
// output.
func (s *MoodService) classify(ctx context.Context, text string) string {
	reply, err := s.Model.Complete(ctx, moodClassifierPrompt,
		[]llm.Turn{{Role: "user", Content: text}}, moodMaxTokens, moodTemperature)
	if err != nil {
		return defaultMoodEmoji
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return defaultMoodEmoji
	}
	return reply
}
