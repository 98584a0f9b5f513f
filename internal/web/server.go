package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-builder/internal/common/config"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/session"
	"portfolio-builder/pkg/registry"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultCookieName = "pb_session"

type Options struct {
	Config  *config.Config
	Manager *session.Manager
	Gallery *registry.GalleryRegistry
	Logger  logger.Logger
	// BaseContext outlives requests; submissions run on it.
	BaseContext context.Context
	// Ready reports whether dependencies are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Server hosts the page, the JSON API and the state websocket.
type Server struct {
	app        *fiber.App
	cfg        *config.Config
	manager    *session.Manager
	gallery    *registry.GalleryRegistry
	logger     logger.Logger
	baseCtx    context.Context
	ready      func(ctx context.Context) error
	cookieName string
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("web: config is required")
	}
	if opts.Manager == nil {
		return nil, errors.New("web: session manager is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	gallery := opts.Gallery
	if gallery == nil {
		gallery = registry.Default()
	}
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cookieName := opts.Config.Server.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}

	s := &Server{
		cfg:        opts.Config,
		manager:    opts.Manager,
		gallery:    gallery.Resolve(opts.Config.Backend.BaseURL),
		logger:     logger.Component(log, "web"),
		baseCtx:    baseCtx,
		ready:      opts.Ready,
		cookieName: cookieName,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               opts.Config.App.Name,
		ErrorHandler:          s.errorHandler,
		ReadTimeout:           config.GetDuration(opts.Config.Server.ReadTimeout),
		WriteTimeout:          config.GetDuration(opts.Config.Server.WriteTimeout),
		BodyLimit:             1 << 20,
		DisableStartupMessage: true,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	s.app.Get("/ready", s.handleReady)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Get("/", s.handleIndex)

	api := s.app.Group("/api")
	api.Post("/submissions", s.handleSubmit)
	api.Get("/state", s.handleState)
	api.Get("/gallery", s.handleGallery)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("sessionID", c.Cookies(s.cookieName))
		return c.Next()
	})
	s.app.Get("/ws", websocket.New(s.handleWebsocket))
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("web server listening", map[string]interface{}{"address": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request", map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.Path(),
			"error": err,
		})
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    fmt.Sprintf("HTTP_%d", code),
			"message": message,
		},
	})
}
