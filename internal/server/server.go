// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"lovediary/internal/cache"
	"lovediary/internal/config"
	"lovediary/internal/database"
	"lovediary/internal/media"
	"lovediary/internal/middleware"
	"lovediary/internal/repository"
	"lovediary/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	entryRepo         repository.EntryRepository
	mediaStore        *media.Store
	entryService      *service.EntryService
	engagementService *service.EngagementService
	promMiddleware    *fiberprometheus.FiberPrometheus
	// principals maps allowed usernames to their bcrypt password hashes.
	principals map[string]string
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := media.NewStore(cfg.UploadDir, middleware.Logger)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, repository.NewEntryRepository(db), store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, entryRepo repository.EntryRepository, store *media.Store) (*Server, error) {
	principals, err := cfg.Principals()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(principals))
	for _, p := range principals {
		byName[p.Username] = p.PasswordHash
	}

	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		entryRepo:      entryRepo,
		mediaStore:     store,
		promMiddleware: middleware.InitMetrics("lovediary-api"),
		principals:     byName,
	}
	server.entryService = service.NewEntryService(entryRepo, store)
	server.engagementService = service.NewEngagementService(entryRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request ID and username into the request context for logging
	app.Use(middleware.ContextMiddleware())

	// Request tracing
	app.Use(middleware.Tracing())

	// HTTP metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit, so browser clients still
	// receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks and metrics
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Login
	api.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public diary routes
	diary := api.Group("/diary")
	diary.Get("/", s.GetEntries)
	diary.Get("/:id", s.GetEntry)

	// Engagement routes (public, matching the original application)
	diary.Post("/:id/like", s.LikeEntry)
	diary.Post("/:id/dislike", s.DislikeEntry)
	diary.Post("/:id/comment", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.AddComment)
	diary.Post("/:id/comment/:commentId/reply", s.AddReply)
	diary.Put("/:id/comment/:commentId", s.EditComment)
	diary.Delete("/:id/comment/:commentId", s.DeleteComment)

	// Protected entry mutation routes
	protected := diary.Group("", middleware.AuthRequired)
	protected.Post("/", s.CreateEntry)
	protected.Put("/:id", s.UpdateEntry)
	protected.Delete("/:id", s.DeleteEntry)

	// Uploaded files served back by filename
	app.Static("/uploads", s.mediaStore.Dir())
}

// Shutdown releases server-held resources: the database pool and the Redis
// connection. The Fiber app itself is shut down by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app runs without Redis, just without caching.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
