package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fitroom-server/internal/assets"
	"fitroom-server/internal/domain"
	"fitroom-server/internal/http/handlers"
	"fitroom-server/internal/http/httpapi"
	"fitroom-server/internal/infra"
	"fitroom-server/internal/providers/chat"
	"fitroom-server/internal/providers/tryon"
	"fitroom-server/internal/session"
	"fitroom-server/internal/storage"
)

const sessionTTL = 7 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("open upload directory")
	}
	if base, err := assets.BaseModel(); err != nil {
		logger.Fatal().Err(err).Msg("load bundled model photo")
	} else if err := files.SeedBaseModel(base); err != nil {
		logger.Fatal().Err(err).Msg("seed default model photo")
	}

	ctx := context.Background()
	sessions, closeStore, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.SessionStore).Msg("init session store")
	}
	defer closeStore()

	chatClient, err := buildChatClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.ChatProvider).Msg("init chat provider")
	}

	tryOnClient := tryon.NewClient(tryon.Options{
		BaseURL: cfg.TryOnBaseURL,
		Timeout: cfg.TryOnTimeout,
		Logger:  logger,
	})

	app := &handlers.App{
		Logger:     logger,
		Config:     cfg,
		Files:      files,
		Sessions:   sessions,
		Tokens:     session.NewTokens(cfg.SessionSecret, sessionTTL),
		ChatClient: chatClient,
		TryOn:      tryOnClient,
	}

	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("provider", chatClient.Provider()).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildSessionStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.SessionStore, func(), error) {
	switch cfg.SessionStore {
	case infra.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client), func() { _ = client.Close() }, nil
	case infra.SessionStorePostgres:
		pool, err := infra.NewSessionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := session.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		logger.Debug().Msg("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}
}

func buildChatClient(cfg *infra.Config) (chat.Client, error) {
	switch cfg.ChatProvider {
	case infra.ChatProviderGemini:
		return chat.NewGeminiClient(chat.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	default:
		return chat.NewAnthropicClient(chat.AnthropicOptions{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
		})
	}
}
