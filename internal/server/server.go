// Package server contains the HTTP handlers for every page of the
// application: the tweet feed, tweet and comment forms, registration,
// login and profiles.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pictweet/internal/cache"
	"pictweet/internal/config"
	"pictweet/internal/database"
	"pictweet/internal/middleware"
	"pictweet/internal/models"
	"pictweet/internal/repository"
	"pictweet/internal/session"
	"pictweet/internal/storage"
	"pictweet/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	cfg      *config.Config
	db       *gorm.DB
	redis    *redis.Client
	users    repository.UserRepository
	tweets   repository.TweetRepository
	comments repository.CommentRepository
	sessions *session.Manager
	store    *storage.LocalStorage
}

// NewServer creates a server instance with all dependencies wired.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	rdb := cache.New(cfg.RedisURL, middleware.Logger)

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		db:       db,
		redis:    rdb,
		users:    repository.NewUserRepository(db),
		tweets:   repository.NewTweetRepository(db),
		comments: repository.NewCommentRepository(db),
		sessions: session.NewManager(db, rdb, cfg.SessionSecret, time.Duration(cfg.SessionTTL())*time.Hour),
		store:    store,
	}, nil
}

// App builds the Fiber application: views, middleware and routes.
func (s *Server) App() *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")

	app := fiber.New(fiber.Config{
		AppName:     "PicTweet",
		Views:       engine,
		ViewsLayout: "layouts/main",
		BodyLimit:   10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return s.handleError(c, err)
		},
	})

	s.setupMiddleware(app)
	s.setupRoutes(app)
	return app
}

func (s *Server) setupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.RequestLogger())

	if s.cfg.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	// The prometheus collectors register globally, so only one app per
	// process may install them.
	if s.cfg.Env != "test" {
		prometheus := fiberprometheus.New("pictweet")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests, please try again later.")
		},
	}))

	app.Use(s.sessions.Middleware())
}

func (s *Server) setupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)

	// Uploaded tweet images.
	app.Static("/media", s.store.BasePath())

	app.Get("/", s.ListTweets)
	app.Get("/tweet/", s.ListTweets)

	// Registered before /tweet/:id/ so "new" is not parsed as an id.
	app.Get("/tweet/new/", session.RequireLogin(), s.NewTweetForm)
	app.Post("/tweet/new/", session.RequireLogin(), s.CreateTweet)

	app.Get("/tweet/:id/", s.TweetDetail)
	app.Post("/tweet/:id/", session.RequireLogin(), s.CreateCommentInline)
	app.Get("/tweet/:id/edit/", session.RequireLogin(), s.EditTweetForm)
	app.Post("/tweet/:id/edit/", session.RequireLogin(), s.UpdateTweet)
	app.Get("/tweet/:id/delete/", session.RequireLogin(), s.DeleteTweet)
	app.Post("/tweet/:tweetId/comment/", session.RequireLogin(), s.CreateComment)

	app.Get("/signup/", s.SignupForm)
	app.Post("/signup/", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	app.Get("/login/", s.LoginForm)
	app.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.All("/logout/", s.Logout)

	app.Get("/profile_user/:userId/", s.Profile)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}
	return nil
}

// handleError maps application errors to pages: missing entities render
// the 404 page, auth failures bounce to the login form, everything else
// is a logged 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return s.renderError(c, fiber.StatusNotFound, appErr.Message)
		case "UNAUTHORIZED":
			return c.Redirect("/login/", fiber.StatusSeeOther)
		case "VALIDATION_ERROR":
			return s.renderError(c, fiber.StatusBadRequest, appErr.Message)
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return s.renderError(c, fiberErr.Code, fiberErr.Message)
	}

	middleware.Logger.Error("unhandled request error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
}
