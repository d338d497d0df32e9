package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/maheshrc27/postgen/internal/api/handlers"
	"github.com/maheshrc27/postgen/internal/api/middleware"
	"github.com/maheshrc27/postgen/internal/telemetry"
)

const (
	allowHeaders = "authorization, x-client-info, apikey, content-type"
	allowMethods = "GET,POST,OPTIONS"
)

// Server holds the handlers and middleware the HTTP API is assembled from.
type Server struct {
	Auth       *middleware.AuthMiddleware
	RateLimit  fiber.Handler
	Generation *handlers.GenerationHandler
	Posts      *handlers.ScheduledPostHandler
	Runner     *handlers.RunnerHandler
	AccessLog  bool
}

// App builds the fiber application with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled request error", "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	if s.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
		MaxAge:       3600,
	}))

	// Bare OPTIONS requests without preflight headers still get an empty 204.
	app.Options("/*", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(telemetry.Handler()))

	api := app.Group("/api")
	if s.Auth != nil {
		api.Use(s.Auth.AuthMiddleware())
	}

	limited := func(h fiber.Handler) []fiber.Handler {
		if s.RateLimit == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{s.RateLimit, h}
	}

	if s.Generation != nil {
		api.Post("/generate-image", limited(s.Generation.GenerateImage)...)
		api.Post("/generate-captions", limited(s.Generation.GenerateCaptions)...)
		api.Post("/generate-video", limited(s.Generation.GenerateVideo)...)
		api.Post("/generate-video-storyboard", limited(s.Generation.GenerateStoryboard)...)
	}

	if s.Runner != nil {
		api.Post("/run-scheduled-posts", s.Runner.RunScheduledPosts)
	}

	if s.Posts != nil {
		api.Post("/scheduled-posts", s.Posts.SchedulePost)
		api.Get("/scheduled-posts", s.Posts.ListPosts)
		api.Post("/scheduled-posts/remove", s.Posts.RemovePost)
		api.Get("/scheduled-posts/history", s.Posts.PostHistory)
		api.Post("/prompt/enhance", s.Posts.EnhancePrompt)
	}

	return app
}
