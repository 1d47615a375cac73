// Handler wiring and service contracts.
//
// Handlers are transport-thin: they validate input, call application services
// through the interfaces below, and translate results into HTTP responses.
// The interfaces keep transport concerns separate from business logic and let
// tests substitute fakes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmate/mindmate-backend/internal/auth"
	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/http/middleware"
	"github.com/mindmate/mindmate-backend/internal/repo"
	"github.com/mindmate/mindmate-backend/internal/services"
)

// AccountService covers registration, login, and profile access.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// Register creates a user from a username and password and issues a token.
	Register(ctx context.Context, username, password string) (*domain.User, string, error)
	// Login verifies a credential (email or username) and issues a token.
	Login(ctx context.Context, loginID, password string) (*domain.User, string, error)
	// User loads a user by id.
	User(ctx context.Context, id uint) (*domain.User, error)
	// Profile loads the user's profile.
	Profile(ctx context.Context, userID uint) (*domain.Profile, error)
	// UpdateProfile applies a partial update; absent fields are untouched.
	UpdateProfile(ctx context.Context, userID uint, patch repo.ProfilePatch) error
}

// AvatarService covers the persona catalog and avatar CRUD.
type AvatarService interface {
	Personas(ctx context.Context) ([]domain.Persona, error)
	List(ctx context.Context, userID uint) ([]domain.AvatarView, error)
	Get(ctx context.Context, id, userID uint) (*domain.AvatarView, error)
	Create(ctx context.Context, userID uint, name, appearanceType string, personaID uint, customImagePath, customPersona string) (*domain.Avatar, error)
	Update(ctx context.Context, id, userID uint, patch repo.AvatarPatch) error
	Delete(ctx context.Context, id, userID uint) error
}

// ChatService covers the conversational turn and history retrieval.
type ChatService interface {
	// SendMessage runs one chat turn: persist the user message, call the
	// model, persist the reply (or a fallback), and return both.
	SendMessage(ctx context.Context, userID, avatarID uint, message string) (*services.ChatTurn, error)
	// History returns past messages in ascending order; avatarID 0 means all.
	History(ctx context.Context, userID, avatarID uint, limit int) ([]domain.ChatMessage, error)
}

// MoodService covers the daily mood calendar.
type MoodService interface {
	Set(ctx context.Context, userID uint, date, emoji string) error
	Get(ctx context.Context, userID uint, date string) (*domain.MoodEntry, error)
	AutoAnalyze(ctx context.Context, userID uint, date string) (string, string, error)
	Month(ctx context.Context, userID uint, year, month int) ([]domain.MoodEntry, error)
}

// Handlers groups the HTTP endpoints for auth, profile, avatars, chat, and
// mood. The authenticator is needed directly for cookie issuance on
// register/login and revocation on logout.
type Handlers struct {
	accountSvc AccountService
	avatarSvc  AvatarService
	chatSvc    ChatService
	moodSvc    MoodService
	auth       *auth.Authenticator
}

// New constructs a Handlers instance bound to the given services.
func New(accountSvc AccountService, avatarSvc AvatarService, chatSvc ChatService, moodSvc MoodService, authn *auth.Authenticator) *Handlers {
	return &Handlers{
		accountSvc: accountSvc,
		avatarSvc:  avatarSvc,
		chatSvc:    chatSvc,
		moodSvc:    moodSvc,
		auth:       authn,
	}
}

// currentUser returns the authenticated user id stored by the auth gate.
// The gate guarantees it is present on protected routes; a zero return on
// such a route indicates a wiring bug and is treated as unauthorized.
func currentUser(c *gin.Context) uint {
	return middleware.UserID(c)
}

// failService maps service sentinel errors to HTTP envelopes. Unrecognized
// errors become 500 internal_error.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeEmptyMessage, "message must not be empty")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidLogin, "invalid credentials")
	case errors.Is(err, services.ErrDuplicateUser):
		fail(c, http.StatusConflict, ErrCodeDuplicateUser, "user already exists")
	case errors.Is(err, services.ErrAvatarNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "avatar not found")
	case errors.Is(err, services.ErrProfileNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
	case errors.Is(err, services.ErrMoodNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no mood recorded for that day")
	case errors.Is(err, services.ErrNoMessagesForDay):
		fail(c, http.StatusBadRequest, ErrCodeNoMessages, "no messages for that day")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
