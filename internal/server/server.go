package server

import (
	"context"
	"fmt"
	"log"

	"noet-be/internal/bootstrap"
	"noet-be/internal/config"
	"noet-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: blob:; " +
	"media-src 'self' blob:; " +
	"connect-src 'self' ws: wss:; " +
	"object-src 'none'; frame-ancestors 'self'"

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	errorHandler := serverutils.NewErrorHandler(container.Logger)

	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Limits.BodyLimitBytes,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	// metrics sit outside the request logger so they see the final status
	app.Use(requestid.New())
	app.Use(container.Metrics.Middleware())
	app.Use(serverutils.RequestLogger(container.Logger, errorHandler))
	app.Use(recover.New())

	if cfg.App.OtelEnabled {
		app.Use(otelfiber.Middleware())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, Content-Disposition",
	}))
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy:     contentSecurityPolicy,
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Get("/metrics", container.Metrics.Handler())

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limits.RateLimitMax,
		Expiration: cfg.Limits.RateLimitWindow,
		Storage:    serverutils.NewCacheStorage(cfg.Limits.RateLimitWindow),
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, please try again later"))
		},
	}))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on %s", s.cfg.Endpoints.Backend.URL())
	return s.app.Listen(fmt.Sprintf(":%d", s.cfg.Endpoints.Backend.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	// fixed paths first: the user group below would otherwise claim
	// /api/health as userId "health"
	c.SystemController.RegisterRoutes(api)

	user := api.Group("/:userId", serverutils.UserScope(cfg.Auth.JwtSecret))
	c.NoteController.RegisterRoutes(user)
	c.AttachmentController.RegisterRoutes(user)
	for _, collection := range c.CollectionControllers {
		collection.RegisterRoutes(user)
	}
	c.ChangeFeedHandler.RegisterRoutes(user)
}
