// Package api exposes a small read-only status surface for operators.
package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/quip/pkg/relay"
)

// StatusProvider supplies the current relay snapshot. Satisfied by
// *relay.Supervisor.
type StatusProvider interface {
	Status() relay.Status
}

// Config holds the API server settings.
type Config struct {
	// ListenAddr is the address to serve on (e.g., ":8081").
	ListenAddr string
}

// Server is the status API server for the quip relay.
type Server struct {
	config   Config
	provider StatusProvider
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new status API server over the given provider.
func NewServer(config Config, provider StatusProvider, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		provider: provider,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/status", s.handleStatus)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "pong"})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.provider.Status())
}
