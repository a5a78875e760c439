package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/artwork"
	"github.com/dogame-art/nfc-gateway/internal/config"
	"github.com/dogame-art/nfc-gateway/internal/logging"
	"github.com/dogame-art/nfc-gateway/internal/server"
	"github.com/dogame-art/nfc-gateway/internal/storage"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// A missing redis is survivable: the limiter falls back to the
	// in-process variant and artwork caching is skipped.
	redis, err := storage.NewRedis(
		cfg.Redis.GetRedisAddr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Warn("redis unavailable, continuing with in-process rate limiting", zap.Error(err))
		redis = nil
	} else {
		defer redis.Close()
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
	}

	var postgres *storage.Postgres
	var store artwork.Store

	if cfg.Postgres.DSN != "" {
		postgres, err = storage.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		store = artwork.NewGormStore(postgres.DB)
		logger.Info("artwork store: postgres")
	} else {
		store = artwork.NewMemoryStore(seedArtworks(cfg)...)
		logger.Info("artwork store: in-memory seed", zap.Int("records", len(cfg.Artwork.Seed)))
	}

	srv := server.New(cfg, logger, redis, postgres, store)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
}

func seedArtworks(cfg *config.Config) []artwork.Artwork {
	records := make([]artwork.Artwork, 0, len(cfg.Artwork.Seed))
	for _, s := range cfg.Artwork.Seed {
		records = append(records, artwork.Artwork{
			Slug:            s.Slug,
			Title:           s.Title,
			ImageURL:        s.ImageURL,
			Description:     s.Description,
			Exclusive:       s.Exclusive,
			DisplayDuration: s.DisplayDuration,
			OwnerAuth:       s.OwnerAuth,
		})
	}
	return records
}
