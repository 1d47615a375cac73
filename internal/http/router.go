// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, rate limiting, and the dual-credential
// auth gate.
//
// Middleware ordering is safety-first: RequestID → logging → recovery run
// before anything that can fail, and the auth gate runs last so rejected
// requests are still traced, logged, and counted.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/auth"
	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/http/handlers"
	"github.com/mindmate/mindmate-backend/internal/http/middleware"
	"github.com/mindmate/mindmate-backend/internal/llm"
	"github.com/mindmate/mindmate-backend/internal/repo"
	"github.com/mindmate/mindmate-backend/internal/services"
)

// storeShim adapts the repository free functions to the services.ChatStore
// and services.MoodStore interfaces. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type storeShim struct{}

func (storeShim) GetAvatar(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.AvatarView, error) {
	return repo.GetAvatar(ctx, db, id, userID)
}

func (storeShim) GetProfile(ctx context.Context, db *gorm.DB, userID uint) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, userID)
}

func (storeShim) CreateMessage(ctx context.Context, db *gorm.DB, userID, avatarID uint, sender, message string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, db, userID, avatarID, sender, message)
}

func (storeShim) RecentMessages(ctx context.Context, db *gorm.DB, userID, avatarID uint, limit int) ([]domain.ChatMessage, error) {
	return repo.RecentMessages(ctx, db, userID, avatarID, limit)
}

func (storeShim) UpsertMood(ctx context.Context, db *gorm.DB, userID uint, date, emoji, source string) error {
	return repo.UpsertMood(ctx, db, userID, date, emoji, source)
}

func (storeShim) GetMood(ctx context.Context, db *gorm.DB, userID uint, date string) (*domain.MoodEntry, error) {
	return repo.GetMood(ctx, db, userID, date)
}

func (storeShim) MonthMoods(ctx context.Context, db *gorm.DB, userID uint, year, month int) ([]domain.MoodEntry, error) {
	return repo.MonthMoods(ctx, db, userID, year, month)
}

func (storeShim) UserMessagesForDay(ctx context.Context, db *gorm.DB, userID uint, day time.Time) ([]string, error) {
	return repo.UserMessagesForDay(ctx, db, userID, day)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), rate limiting, CORS, security
// headers, compression, the auth gate, health and metrics endpoints, and the
// public API under cfg.APIBasePath.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, model llm.ChatCompleter, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// Trace all HTTP requests.
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// Correlate requests and logs.
	r.Use(middleware.RequestID())

	// Structured access logging with credential redaction.
	r.Use(middleware.RedactingLogger())

	// Panic recovery to JSON 500 (with request id).
	r.Use(middleware.Recovery())

	// Global body size limit (1 MiB).
	r.Use(limitBody(1 << 20))

	// Prometheus metrics and /metrics endpoint.
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token-bucket rate limiter per user/IP.
	r.Use(middleware.RateLimiter(cfg.RateRPS, cfg.RateBurst, 10*time.Minute, middleware.KeyByUserOrIP))

	// CORS posture. Cookie auth requires credentials, which in turn requires
	// an explicit origin allowlist; without one we fall back to wildcard
	// origins with credentials off (bearer tokens still work).
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Browser hardening headers.
	r.Use(middleware.SecurityHeaders(cfg.Security.EnableHSTS, int(cfg.Security.HSTSMaxAge.Seconds())))

	// Response compression.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks.
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health.
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Credential plumbing: in-memory bearer tokens plus the signed cookie
	// session, arbitrated by one authenticator.
	tokens := auth.NewMemoryTokenStore(cfg.Auth.TokenTTL, nil)
	session := auth.NewCookieSession([]byte(cfg.Auth.SessionSecret), cfg.Auth.SessionCookie, cfg.Auth.TokenTTL, cfg.Auth.SecureCookie)
	authn := auth.NewAuthenticator(tokens, session)

	// Dual-credential gate for everything past this point.
	r.Use(middleware.AuthGate(authn, cfg.APIBasePath))

	// Dependency injection: services ← repo/db/model.
	accountSvc := services.NewAuthService(db, tokens)
	avatarSvc := services.NewAvatarService(db)
	chatSvc := services.NewChatService(db, storeShim{}, model, cfg.OpenAI.ChatMaxTokens, cfg.OpenAI.ChatTemperature)
	moodSvc := services.NewMoodService(db, storeShim{}, model)
	h := handlers.New(accountSvc, avatarSvc, chatSvc, moodSvc, authn)

	// Public API.
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Auth
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/auth/check", h.CheckAuth)

		// Profile
		api.GET("/profile", h.GetProfile)
		api.POST("/profile", h.UpdateProfile)

		// Avatars
		api.GET("/avatar/personas", h.ListPersonas)
		api.GET("/avatar/list", h.ListAvatars)
		api.GET("/avatar/:id", h.GetAvatar)
		api.POST("/avatar/create", h.CreateAvatar)
		api.PUT("/avatar/:id", h.UpdateAvatar)
		api.POST("/avatar/:id", h.UpdateAvatar)
		api.DELETE("/avatar/:id", h.DeleteAvatar)

		// Chat
		api.GET("/chat/history", h.ChatHistory)
		api.POST("/chat/send", h.SendMessage)

		// Mood
		api.POST("/mood/set", h.SetMood)
		api.POST("/mood/auto-analyze", h.AutoAnalyzeMood)
		api.GET("/mood/get", h.GetMood)
		api.GET("/mood/month", h.MonthMoods)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body
// reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
