// Package services – AvatarService
//
// This file implements AvatarService, which manages the read-only persona
// catalog and the user-owned avatar records that bind a persona (or custom
// override) to a chat identity. Every mutation re-verifies (avatar, user)
// ownership at mutation time; a miss is reported as ErrAvatarNotFound
// without revealing whether the avatar exists at all.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/repo"
)

// AvatarService provides persona catalog reads and avatar CRUD.
type AvatarService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewAvatarService constructs an AvatarService.
func NewAvatarService(db *gorm.DB) *AvatarService {
	return &AvatarService{DB: db}
}

// Personas returns the full read-only catalog.
func (s *AvatarService) Personas(ctx context.Context) ([]domain.Persona, error) {
	return repo.ListPersonas(ctx, s.DB)
}

// List returns the user's avatars, most recently created first, joined with
// their persona display fields.
func (s *AvatarService) List(ctx context.Context, userID uint) ([]domain.AvatarView, error) {
	return repo.ListAvatars(ctx, s.DB, userID)
}

// Get returns one avatar scoped to its owner.
func (s *AvatarService) Get(ctx context.Context, id, userID uint) (*domain.AvatarView, error) {
	v, err := repo.GetAvatar(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, err
	}
	return v, nil
}

// Create inserts a new avatar for userID. Name, appearance type, and persona
// are required; there is no uniqueness constraint across a user's avatars.
func (s *AvatarService) Create(ctx context.Context, userID uint, name, appearanceType string, personaID uint, customImagePath, customPersona string) (*domain.Avatar, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(appearanceType) == "" || personaID == 0 {
		return nil, ErrValidation
	}
	a := &domain.Avatar{
		UserID:          userID,
		AvatarName:      name,
		AppearanceType:  appearanceType,
		CustomImagePath: customImagePath,
		PersonaID:       personaID,
		CustomPersona:   customPersona,
	}
	if err := repo.CreateAvatar(ctx, s.DB, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update applies a partial update to the (id, userID) avatar. An empty patch
// is a success with no effect; an ownership miss is ErrAvatarNotFound.
func (s *AvatarService) Update(ctx context.Context, id, userID uint, patch repo.AvatarPatch) error {
	err := repo.UpdateAvatar(ctx, s.DB, id, userID, patch)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAvatarNotFound
	}
	return err
}

// Delete removes the (id, userID) avatar together with its conversation log.
func (s *AvatarService) Delete(ctx context.Context, id, userID uint) error {
	err := repo.DeleteAvatar(ctx, s.DB, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAvatarNotFound
	}
	return err
}
