// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User and
// Profile models.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

// CreateUser inserts a user row and its empty profile in one transaction.
// Unique violations on email/username surface unchanged so callers can map
// them to a conflict.
func CreateUser(ctx context.Context, db *gorm.DB, email, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Profile{UserID: u.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by ID.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByLogin fetches a user by email or username (the login form
// accepts either).
func FindUserByLogin(ctx context.Context, db *gorm.DB, loginID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ? OR username = ?", loginID, loginID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile fetches the profile owned by userID.
func GetProfile(ctx context.Context, db *gorm.DB, userID uint) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfilePatch carries the optional profile fields of a partial update.
// Only non-nil fields are applied.
type ProfilePatch struct {
	Name            *string
	Gender          *string
	AvatarPath      *string
	BirthDate       *string
	Goal            *string
	SelfDescription *string
}

// changes maps the present fields to their column updates.
func (p ProfilePatch) changes() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Gender != nil {
		m["gender"] = *p.Gender
	}
	if p.AvatarPath != nil {
		m["avatar_path"] = *p.AvatarPath
	}
	if p.BirthDate != nil {
		m["birth_date"] = *p.BirthDate
	}
	if p.Goal != nil {
		m["goal"] = *p.Goal
	}
	if p.SelfDescription != nil {
		m["self_description"] = *p.SelfDescription
	}
	return m
}

// UpdateProfile applies the present patch fields to the user's profile and
// stamps updated_at. An empty patch is a no-op success.
func UpdateProfile(ctx context.Context, db *gorm.DB, userID uint, patch ProfilePatch) error {
	changes := patch.changes()
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
