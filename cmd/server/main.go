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
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/vuln-kanban-api/internal/config"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/database"
	"github.com/yukikurage/vuln-kanban-api/internal/handlers"
	"github.com/yukikurage/vuln-kanban-api/internal/middleware"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"github.com/yukikurage/vuln-kanban-api/internal/seed"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	configureLogging(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	handlers.UseJSONFieldNames()

	// Validate the seed board once; every new session board is cloned from it
	board, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load seed board")
	}
	registry := repository.NewMemoryBoardRegistry(func() (*seed.Board, error) {
		return board, nil
	}, time.Now)

	// Optional activity log
	var activityRepo repository.ActivityRepository
	db, err := database.Connect(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info("Activity log disabled")
	case err != nil:
		log.WithError(err).Fatal("Failed to connect to activity database")
	default:
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
		activityRepo = repository.NewActivityRepository(db)
	}

	// Optional board events on Redis pub/sub
	var publisher services.EventPublisher = services.NoopEventPublisher{}
	if cfg.EventsEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("Redis not reachable, board events will be retried per publish")
		}
		cancel()
		publisher = services.NewRedisEventPublisher(client, cfg.EventsChannel)
		log.WithField("channel", cfg.EventsChannel).Info("Publishing board events to Redis")
	}

	// Initialize AI service
	var extractor services.FindingExtractor
	if cfg.OpenAIAPIKey != "" {
		extractor = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize services
	recorder := services.NewChangeRecorder(activityRepo, publisher, log.StandardLogger())
	authService := services.NewAuthService(repository.NewUserRepository(), cfg.AuthMode, cfg.AuthDelay)
	taskService := services.NewTaskService(registry, recorder, extractor)
	boardService := services.NewBoardService(registry, activityRepo, recorder)
	dragService := services.NewDragService(taskService)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.StandardLogger()))

	store, err := newSessionStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to create session store")
	}
	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAgeSeconds,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:  handlers.NewAuthHandler(authService, boardService, dragService),
		Task:  handlers.NewTaskHandler(taskService),
		Board: handlers.NewBoardHandler(boardService),
		Drag:  handlers.NewDragHandler(dragService),
		Tasks: taskService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"port":      cfg.Port,
			"auth_mode": authService.Mode(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func configureLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.SessionStore != config.SessionStoreRedis {
		return cookie.NewStore([]byte(cfg.SessionSecret)), nil
	}

	return redisStore.NewStore(
		10,                // Redis pool size
		"tcp",             // network type
		cfg.RedisAddr(),   // Redis address from config
		"",                // username (empty for default user)
		cfg.RedisPassword, // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
}
