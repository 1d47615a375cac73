// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Persona
// and Avatar models, including the ownership-scoped mutations and the
// cascade delete of an avatar's conversation log.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

// avatarViewColumns selects avatar rows joined with their persona's display
// fields, into domain.AvatarView.
const avatarViewColumns = `avatars.*,
	personas.name AS persona_name,
	personas.system_prompt AS system_prompt,
	personas.description AS persona_description,
	personas.kind AS persona_kind`

// ListPersonas returns the full read-only persona catalog ordered by ID.
func ListPersonas(ctx context.Context, db *gorm.DB) ([]domain.Persona, error) {
	var out []domain.Persona
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ListAvatars returns all avatars owned by userID, most recently created
// first, each joined with its persona's name, prompt, and description.
func ListAvatars(ctx context.Context, db *gorm.DB, userID uint) ([]domain.AvatarView, error) {
	var out []domain.AvatarView
	err := db.WithContext(ctx).
		Model(&domain.Avatar{}).
		Select(avatarViewColumns).
		Joins("LEFT JOIN personas ON personas.id = avatars.persona_id").
		Where("avatars.user_id = ?", userID).
		Order("avatars.created_at DESC, avatars.id DESC").
		Scan(&out).Error
	return out, err
}

// GetAvatar fetches an avatar by ID joined with its persona. When userID is
// non-zero the result is scoped to that owner; a miss on either condition
// yields gorm.ErrRecordNotFound.
func GetAvatar(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.AvatarView, error) {
	q := db.WithContext(ctx).
		Model(&domain.Avatar{}).
		Select(avatarViewColumns).
		Joins("LEFT JOIN personas ON personas.id = avatars.persona_id").
		Where("avatars.id = ?", id)
	if userID != 0 {
		q = q.Where("avatars.user_id = ?", userID)
	}
	var v domain.AvatarView
	res := q.Limit(1).Scan(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

// CreateAvatar inserts a new avatar row for the given user.
func CreateAvatar(ctx context.Context, db *gorm.DB, a *domain.Avatar) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return db.WithContext(ctx).Create(a).Error
}

// AvatarPatch carries the optional avatar fields of a partial update.
// Only non-nil fields are applied.
type AvatarPatch struct {
	AvatarName      *string
	AppearanceType  *string
	CustomImagePath *string
	PersonaID       *uint
	CustomPersona   *string
}

// changes maps the present fields to their column updates.
func (p AvatarPatch) changes() map[string]any {
	m := map[string]any{}
	if p.AvatarName != nil {
		m["avatar_name"] = *p.AvatarName
	}
	if p.AppearanceType != nil {
		m["appearance_type"] = *p.AppearanceType
	}
	if p.CustomImagePath != nil {
		m["custom_image_path"] = *p.CustomImagePath
	}
	if p.PersonaID != nil {
		m["persona_id"] = *p.PersonaID
	}
	if p.CustomPersona != nil {
		m["custom_persona"] = *p.CustomPersona
	}
	return m
}

// IsEmpty reports whether the patch carries no fields.
func (p AvatarPatch) IsEmpty() bool { return len(p.changes()) == 0 }

// UpdateAvatar applies the present patch fields to the (id, userID) avatar
// and stamps updated_at. Ownership is re-verified by the WHERE clause at
// mutation time; zero rows affected yields gorm.ErrRecordNotFound so callers
// cannot distinguish a missing avatar from another user's.
func UpdateAvatar(ctx context.Context, db *gorm.DB, id, userID uint, patch AvatarPatch) error {
	changes := patch.changes()
	if len(changes) == 0 {
		// No-op updates still require the ownership check.
		_, err := GetAvatar(ctx, db, id, userID)
		return err
	}
	changes["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Avatar{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAvatar removes the (id, userID) avatar and its chat messages in one
// transaction. Zero rows affected on the avatar delete yields
// gorm.ErrRecordNotFound and leaves the conversation log untouched.
func DeleteAvatar(ctx context.Context, db *gorm.DB, id, userID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Avatar{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("avatar_id = ? AND user_id = ?", id, userID).
			Delete(&domain.ChatMessage{}).Error
	})
}
