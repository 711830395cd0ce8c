package server

import (
	"strings"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/parleychat/relay/config"
	"github.com/parleychat/relay/src/hub"
)

// Server binds the listening endpoint: WebSocket upgrades under
// /conversations/, everything else (health, stats, metrics) through Fiber.
// The split exists because Fiber v3 does not expose *fasthttp.RequestCtx,
// which the upgrader needs.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	app      *fiber.App
	srv      *fasthttp.Server
	upgrader websocket.FastHTTPUpgrader
	logger   zerolog.Logger
	started  time.Time
}

// New wires the route surface. Call Listen to serve.
func New(cfg *config.Config, h *hub.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		hub: h,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		logger:  logger.With().Str("component", "server").Logger(),
		started: time.Now(),
	}

	app := fiber.New()
	app.Get("/healthz", s.handleHealth)
	app.Get("/stats", s.handleStats)
	s.app = app

	fiberHandler := app.Handler()
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	s.srv = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			path := string(ctx.Path())
			switch {
			case strings.HasPrefix(path, "/conversations/"):
				s.handleUpgrade(ctx)
			case path == "/metrics":
				metricsHandler(ctx)
			default:
				fiberHandler(ctx)
			}
		},
	}
	return s
}

// Listen serves until Shutdown is called. A bind failure is returned to the
// caller and is fatal.
func (s *Server) Listen() error {
	s.logger.Info().Str("addr", s.cfg.Addr()).Msg("relay listening")
	return s.srv.ListenAndServe(s.cfg.Addr())
}

// Shutdown stops accepting new connections and waits for in-flight
// handlers to settle. Close the hub's clients first so WebSocket handlers
// can return.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleStats(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connections":   s.hub.ClientCount(),
		"conversations": s.hub.Conversations(),
		"uptime":        time.Since(s.started).Round(time.Second).String(),
	})
}
