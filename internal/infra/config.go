package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends selectable via SESSION_STORE.
const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Chat providers selectable via CHAT_PROVIDER.
const (
	ChatProviderAnthropic = "anthropic"
	ChatProviderGemini    = "gemini"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	PublicBaseURL  string
	UploadDir      string
	MaxUploadMB    int64
	AllowedOrigins []string

	SessionSecret string
	SessionStore  string
	RedisAddr     string
	DatabaseURL   string

	ChatProvider     string
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string

	TryOnBaseURL string

	ChatTimeout      time.Duration
	TryOnTimeout     time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// MaxUploadBytes returns the request body cap for image uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "5001"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:    int64(getEnvInt("MAX_UPLOAD_MB", 16)),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:19006,http://localhost:19000,http://localhost:8081")),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionStore:  getEnv("SESSION_STORE", SessionStoreMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		ChatProvider:     getEnv("CHAT_PROVIDER", ChatProviderAnthropic),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-sonnet-20240229"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		TryOnBaseURL: getEnv("TRYON_BASE_URL", "https://levihsu-ootdiffusion.hf.space"),

		ChatTimeout:      time.Second * time.Duration(getEnvInt("CHAT_TIMEOUT_SECONDS", 30)),
		TryOnTimeout:     time.Second * time.Duration(getEnvInt("TRYON_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreRedis, SessionStorePostgres:
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}
	if cfg.SessionStore == SessionStorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when SESSION_STORE=postgres")
	}

	switch cfg.ChatProvider {
	case ChatProviderAnthropic, ChatProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported CHAT_PROVIDER %q", cfg.ChatProvider)
	}

	if cfg.SessionSecret == "" {
		if cfg.AppEnv != "development" {
			return nil, fmt.Errorf("SESSION_SECRET is required outside development")
		}
		cfg.SessionSecret = "dev-session-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
