// Package server contains the HTTP handlers for the board API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"amateurs/internal/config"
	"amateurs/internal/middleware"
	"amateurs/internal/models"
	"amateurs/internal/repository"
	"amateurs/internal/service"

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

// CommunityService is the post lifecycle the handlers drive.
type CommunityService interface {
	SearchPosts(ctx context.Context, boardType models.BoardType, param models.PostPaginationParam) (*models.Page[models.PostProjection], error)
	GetPost(ctx context.Context, postID uint, viewer models.Viewer, ipAddress string) (*models.PostProjection, error)
	CreatePost(ctx context.Context, req models.PostRequest, boardType models.BoardType, viewer models.Viewer) (*models.PostProjection, error)
	UpdatePost(ctx context.Context, req models.PostRequest, postID uint, viewer models.Viewer) error
	DeletePost(ctx context.Context, postID uint, viewer models.Viewer) error
	BlindPost(ctx context.Context, postID uint, blinded bool, viewer models.Viewer) error
	ToggleLike(ctx context.Context, postID uint, viewer models.Viewer) (*service.LikeResult, error)
}

// Deps are the already-initialized collaborators a Server needs.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Users     repository.UserRepository
	Community CommunityService
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	community      CommunityService
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics registers the HTTP collectors on the default registry once, so
// /metrics serves them next to the domain counters.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWithDefaultRegistry("amateurs-board")
	})
	return prom
}

// NewServer creates a Server from initialized dependencies.
func NewServer(cfg *config.Config, deps Deps) *Server {
	middleware.InitMiddleware(cfg)
	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: httpMetrics(),
		userRepo:       deps.Users,
		community:      deps.Community,
	}
	s.app = s.App()
	return s
}

// App builds a Fiber app with middleware and routes. NewServer keeps one for Start.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Amateurs Board API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")
	community := api.Group("/community")

	// Specific /posts routes before the generic /:boardType group
	posts := community.Group("/posts")
	posts.Get("/:id", middleware.OptionalAuth, s.GetPost)
	posts.Put("/:id", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)
	posts.Post("/:id/like", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 30, time.Minute, "like_post"), s.ToggleLike)

	community.Get("/:boardType/posts", s.SearchPosts)
	community.Post("/:boardType/posts", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)

	admin := api.Group("/admin", middleware.AuthRequired, s.AdminRequired())
	admin.Put("/posts/:id/blind", s.BlindPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it the board runs with no view dedupe and no rate limiting.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, err := s.viewer(c)
		if err != nil {
			return models.RespondWithError(c, models.StatusFor(err), err)
		}
		if !viewer.Role.IsElevated() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewAccessDeniedError("Admin access required"))
		}
		return c.Next()
	}
}

// Start listens on the configured port. It blocks until Shutdown.
func (s *Server) Start() error {
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
