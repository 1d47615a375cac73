// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database path, session and token
// lifetimes, the upstream model endpoint, rate limiting, and observability.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mindmate/mindmate-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig defines credential lifetimes and the cookie-session secret.
type AuthConfig struct {
	SessionSecret string        // SESSION_SECRET: HMAC key for the signed cookie
	SessionCookie string        // SESSION_COOKIE: cookie name
	TokenTTL      time.Duration // TOKEN_TTL: bearer token lifetime
	SecureCookie  bool          // SESSION_COOKIE_SECURE: Secure attribute
}

// OpenAIConfig defines the upstream chat-completions collaborator. Any
// OpenAI-compatible endpoint works (the model defaults by provider).
type OpenAIConfig struct {
	APIKey          string        // OPENAI_API_KEY
	BaseURL         string        // OPENAI_BASE_URL
	Model           string        // OPENAI_MODEL (empty = derive from BaseURL)
	Timeout         time.Duration // OPENAI_TIMEOUT: hard cap per call
	ChatMaxTokens   int           // CHAT_MAX_TOKENS
	ChatTemperature float64       // CHAT_TEMPERATURE
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath      string // SQLite path
	APIBasePath string // base path for API routes

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Credentials
	Auth AuthConfig

	// Upstream model
	OpenAI OpenAIConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:      getenv("DB_PATH", "mindmate.db"),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Credentials
		Auth: AuthConfig{
			SessionSecret: getenv("SESSION_SECRET", ""),
			SessionCookie: getenv("SESSION_COOKIE", "mindmate_session"),
			TokenTTL:      getdur("TOKEN_TTL", 24*time.Hour),
			SecureCookie:  getbool("SESSION_COOKIE_SECURE", false),
		},

		// Upstream model
		OpenAI: OpenAIConfig{
			APIKey:          getenv("OPENAI_API_KEY", ""),
			BaseURL:         getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:           getenv("OPENAI_MODEL", ""),
			Timeout:         getdur("OPENAI_TIMEOUT", 30*time.Second),
			ChatMaxTokens:   getint("CHAT_MAX_TOKENS", 500),
			ChatTemperature: getfloat("CHAT_TEMPERATURE", 0.3),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "mindmate-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = deriveModel(cfg.OpenAI.BaseURL)
	}
	// The cookie session is unusable without an HMAC key: securecookie
	// rejects every encode/decode when the hash key is empty. Rather than
	// ship a half-working credential pair, generate an ephemeral key and say
	// so loudly; cookie sessions then work but do not survive restarts.
	if strings.TrimSpace(cfg.Auth.SessionSecret) == "" {
		secret, err := randomSecret(32)
		if err != nil {
			return cfg, err
		}
		cfg.Auth.SessionSecret = secret
		log.Warn().Msg("SESSION_SECRET not set; generated an ephemeral session key, cookie sessions will not survive restarts")
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Auth.SessionCookie) == "" {
		return cfg, errors.New("SESSION_COOKIE must not be empty")
	}
	if cfg.OpenAI.Timeout <= 0 {
		return cfg, errors.New("OPENAI_TIMEOUT must be > 0")
	}
	if cfg.OpenAI.ChatMaxTokens <= 0 {
		return cfg, errors.New("CHAT_MAX_TOKENS must be > 0")
	}
	if cfg.OpenAI.ChatTemperature < 0 || cfg.OpenAI.ChatTemperature > 2 {
		return cfg, errors.New("CHAT_TEMPERATURE must be in [0,2]")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// randomSecret returns n random bytes, base64-encoded.
func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

// deriveModel picks a default model name from the endpoint host, mirroring
// the provider auto-detection of the original deployment.
func deriveModel(baseURL string) string {
	if strings.Contains(strings.ToLower(baseURL), "deepseek") {
		return "deepseek-chat"
	}
	return "gpt-3.5-turbo"
}

// ---- env helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
