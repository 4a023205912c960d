package server

import (
	"log"

	"ai-orchestrator-be/internal/bootstrap"
	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
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
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	apiKeyMiddleware := serverutils.ApiKeyMiddleware(c.ApiKeyService, cfg.Auth.RequireAPIKey)
	jwtMiddleware := serverutils.JwtMiddleware(cfg.Auth.JWTSecret)

	c.ChatController.RegisterRoutes(api, apiKeyMiddleware)
	c.GenerateController.RegisterRoutes(api, apiKeyMiddleware)
	c.KnowledgeController.RegisterRoutes(api, apiKeyMiddleware)
	c.FeedbackController.RegisterRoutes(api, apiKeyMiddleware, jwtMiddleware)
	c.AuthController.RegisterRoutes(api, jwtMiddleware)
}
