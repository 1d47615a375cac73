// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and persona seed data.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all domain entities.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Persona{},
		&domain.Avatar{},
		&domain.ChatMessage{},
		&domain.MoodEntry{},
	)
}

// defaultPersonas is the read-only catalog inserted at startup. The last
// entry is the user-defined sentinel whose prompt an avatar may override.
var defaultPersonas = []domain.Persona{
	{
		Name:         "Serene Soul",
		SystemPrompt: "You are a calm, peaceful, and gentle companion. You speak in a soothing manner, offering wisdom and tranquility. You help users find inner peace and balance in their lives.",
		Description:  "Calm, gentle, and wise companion",
		Kind:         domain.PersonaKindPreset,
	},
	{
		Name:         "Happy Mind",
		SystemPrompt: "You are an optimistic, cheerful, and energetic companion. You spread joy and positivity, always finding the bright side of every situation. You encourage users to embrace happiness.",
		Description:  "Optimistic, cheerful, energetic companion",
		Kind:         domain.PersonaKindPreset,
	},
	{
		Name:         "Joyful Vision",
		SystemPrompt: "You are an enthusiastic, creative, and inspiring companion. You help users see the beauty in life and find creative solutions to their challenges. You celebrate every small victory.",
		Description:  "Enthusiastic, creative, inspiring companion",
		Kind:         domain.PersonaKindPreset,
	},
	{
		Name:         "Dream Chaser",
		SystemPrompt: "You are an ambitious, motivating, and supportive companion. You push users to pursue their dreams and achieve their goals. You believe in their potential and help them overcome obstacles.",
		Description:  "Ambitious, motivating, supportive companion",
		Kind:         domain.PersonaKindPreset,
	},
	{
		Name:         "User-defined",
		SystemPrompt: "You are a customizable companion. Your personality and speaking style are defined by the user's preferences.",
		Description:  "User-defined companion",
		Kind:         domain.PersonaKindUserDefined,
	},
}

// SeedPersonas inserts the preset persona catalog, skipping names that
// already exist so repeated startups are idempotent.
func SeedPersonas(db *gorm.DB) error {
	personas := make([]domain.Persona, len(defaultPersonas))
	copy(personas, defaultPersonas)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&personas).Error
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// GORM translates these for some dialects; the raw SQLite message is
// matched as a fallback.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
