// Package services – AuthService
//
// This file implements AuthService, which owns account registration, login,
// and credential issuance. Passwords are hashed with bcrypt; successful
// registration and login both issue a fresh bearer token from the injected
// token store (the cookie-session half of the dual credential is written at
// the transport layer, where the response writer lives).
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/auth"
	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/repo"
)

// registrationEmailDomain synthesizes a unique email from the username when
// the client registers with a username alone.
const registrationEmailDomain = "@mindmate.local"

// AuthService provides account lifecycle and credential operations.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens issues and revokes bearer tokens.
	Tokens auth.TokenStore
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, tokens auth.TokenStore) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

// Register creates an account with an empty profile and issues a token.
// The username doubles as the local part of the synthesized unique email.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	email := username + registrationEmailDomain
	user, err := repo.CreateUser(ctx, s.DB, email, username, string(hash))
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", err
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the login id (email or username) and password, issuing a
// fresh token on success. Unknown accounts and bad passwords are reported
// identically.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*domain.User, string, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, "", ErrValidation
	}

	user, err := repo.FindUserByLogin(ctx, s.DB, loginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// User fetches the account behind a resolved credential.
func (s *AuthService) User(ctx context.Context, id uint) (*domain.User, error) {
	return repo.GetUser(ctx, s.DB, id)
}

// Profile returns the caller's profile.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*domain.Profile, error) {
	p, err := repo.GetProfile(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies a partial update to the caller's profile. An empty
// patch succeeds with no effect.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, patch repo.ProfilePatch) error {
	err := repo.UpdateProfile(ctx, s.DB, userID, patch)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileNotFound
	}
	return err
}
