package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/artwork"
	"github.com/dogame-art/nfc-gateway/internal/auth"
	"github.com/dogame-art/nfc-gateway/internal/circuitbreaker"
	"github.com/dogame-art/nfc-gateway/internal/classifier"
	"github.com/dogame-art/nfc-gateway/internal/config"
	"github.com/dogame-art/nfc-gateway/internal/handler"
	"github.com/dogame-art/nfc-gateway/internal/middleware"
	"github.com/dogame-art/nfc-gateway/internal/ratelimit"
	"github.com/dogame-art/nfc-gateway/internal/storage"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	httpServer *http.Server
}

// New wires the full pipeline: classification, rate limiting, device auth
// and the artwork handlers, in that order. redis and postgres may be nil;
// the limiter then runs in-process and the catalog is served from memory.
func New(cfg *config.Config, logger *zap.Logger, redis *storage.RedisClient, postgres *storage.Postgres, store artwork.Store) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	cls := classifier.New(cfg.Classifier)
	limiter := ratelimit.NewLimiter(redis, cfg.RateLimit.Algorithm, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	authenticator := auth.NewDeviceAuthenticator(cfg.Auth.DeviceToken, cfg.Auth.DeviceTokenHash)

	var issuer auth.TokenIssuer
	if cfg.Auth.MachineTokenSecret != "" {
		issuer = auth.NewMachineTokenIssuer(
			cfg.Auth.MachineTokenSecret,
			time.Duration(cfg.Auth.MachineTokenTTL)*time.Second,
		)
	}

	var cache artwork.Cache
	if redis != nil {
		cache = redis
	}
	breaker := circuitbreaker.New(circuitbreaker.Config{})
	resolver := artwork.NewResolver(store, cache, breaker,
		time.Duration(cfg.Artwork.CacheTTLSeconds)*time.Second, logger)

	artworkHandler := handler.NewArtworkHandler(
		resolver,
		issuer,
		cfg.Artwork.PublicBaseURL,
		cfg.Artwork.APIBaseURL,
		time.Duration(cfg.Server.RequestTimeout)*time.Second,
		logger,
	)

	var redisPinger, postgresPinger handler.Pinger
	if redis != nil {
		redisPinger = redis
	}
	if postgres != nil {
		postgresPinger = postgres
	}
	healthHandler := handler.NewHealthHandler(redisPinger, postgresPinger)

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The decision pipeline. Order matters: bots are dropped before they
	// consume quota, quota is consumed before credentials are checked.
	pipeline := router.Group("/", middleware.Classify(cls), middleware.RateLimit(limiter, logger))
	pipeline.GET("/artwork/:slug", middleware.DeviceAuth(authenticator), artworkHandler.Get)
	pipeline.GET("/nfc/:slug", artworkHandler.Discover)

	return s
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("starting nfc gateway",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
