package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yukikurage/collab-docs-api/internal/config"
	"github.com/yukikurage/collab-docs-api/internal/constants"
	"github.com/yukikurage/collab-docs-api/internal/database"
	"github.com/yukikurage/collab-docs-api/internal/handlers"
	"github.com/yukikurage/collab-docs-api/internal/logger"
	"github.com/yukikurage/collab-docs-api/internal/metrics"
	"github.com/yukikurage/collab-docs-api/internal/middleware"
	"github.com/yukikurage/collab-docs-api/internal/repository"
	"github.com/yukikurage/collab-docs-api/internal/revocation"
	"github.com/yukikurage/collab-docs-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	denylist := newDenylist(cfg, redisClient)

	// Repositories
	userRepo := repository.NewUserRepository(db, repository.WithQueryTimeout(cfg.DB.QueryTimeout))
	workspaceRepo := repository.NewWorkspaceRepository(db, repository.WithQueryTimeout(cfg.DB.QueryTimeout))
	documentRepo := repository.NewDocumentRepository(db, repository.WithQueryTimeout(cfg.DB.QueryTimeout))

	// Services
	tokens := services.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	authService := services.NewAuthService(
		userRepo,
		services.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		denylist,
		services.DeletePolicy(cfg.Policy.UserDelete),
	)
	workspaceService := services.NewWorkspaceService(workspaceRepo, documentRepo, services.DeletePolicy(cfg.Policy.WorkspaceDelete))
	documentService := services.NewDocumentService(
		documentRepo,
		workspaceRepo,
		services.WithWorkspaceOwnerCreateGuard(cfg.Policy.DocumentCreateNeedsWorkspaceOwner),
	)
	gate := services.NewAccessGate(tokens, userRepo, denylist)

	transport, err := middleware.NewTokenTransport(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure token transport")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), logger.Middleware(log), metrics.Middleware())

	if cfg.Auth.TokenSource == config.TokenSourceSession {
		store, err := middleware.NewSessionStore(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create session store")
		}
		r.Use(sessions.Sessions(constants.SessionCookieName, store))
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(r, handlers.Routes{
		Users:         handlers.NewUserHandler(authService, transport),
		Workspaces:    handlers.NewWorkspaceHandler(workspaceService, cfg.Policy.AdminListingsEnabled),
		Documents:     handlers.NewDocumentHandler(documentService),
		Health:        handlers.NewHealthHandler(db, redisClient),
		RequireAuth:   middleware.RequireAuth(gate, transport),
		LoginLimiter:  middleware.NewRateLimiter("login", cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst).Middleware(),
		AdminListings: cfg.Policy.AdminListingsEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("token_source", cfg.Auth.TokenSource).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// connectRedis returns a client only when some component is backed by redis.
func connectRedis(cfg *config.Config, log zerolog.Logger) *redis.Client {
	if cfg.Auth.RevocationStore != "redis" && cfg.Auth.SessionStore != "redis" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Failed to connect to redis")
	}

	log.Info().Str("addr", cfg.Redis.Addr()).Msg("Connected to redis")
	return client
}

func newDenylist(cfg *config.Config, client *redis.Client) revocation.Denylist {
	switch cfg.Auth.RevocationStore {
	case "redis":
		return revocation.NewRedisDenylist(client)
	case "none":
		return revocation.Noop{}
	default:
		return revocation.NewMemoryDenylist()
	}
}
