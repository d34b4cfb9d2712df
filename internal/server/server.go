package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/mborhani/vizboard/config"
	"github.com/mborhani/vizboard/internal/ingest"
	"github.com/mborhani/vizboard/internal/session"
	"github.com/mborhani/vizboard/internal/session/inmemory"
	redis_session "github.com/mborhani/vizboard/internal/session/redis"
	"github.com/mborhani/vizboard/internal/telemetry"
)

// Run wires the dashboard together and serves it.
func Run(cfg *appconfig.Config, addr string) error {
	e := New(cfg)
	if addr == "" {
		addr = cfg.General.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":8050"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// New builds the echo instance with all routes registered; split from
// Run so tests can drive it with httptest.
func New(cfg *appconfig.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = !cfg.General.Debug
	e.Debug = cfg.General.Debug
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	registerUI(e)

	tele := telemetry.NewTelemetry(prometheus.DefaultRegisterer)
	pipe := &Pipeline{
		Ingest:       ingest.New(cfg.Ingest),
		Tele:         tele,
		TransitionMS: cfg.Chart.TransitionMS,
		Logger:       log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags),
	}
	h := &DashboardHandler{
		Sessions:  newSessionStore(cfg.Session),
		Pipeline:  pipe,
		TTL:       cfg.Session.TTL,
		PNGWidth:  cfg.Chart.PNGWidth,
		PNGHeight: cfg.Chart.PNGHeight,
	}
	h.Register(e.Group("/api"))

	return e
}

func newSessionStore(cfg appconfig.SessionConfig) session.Store {
	switch cfg.Store {
	case "redis":
		return redis_session.NewRedisSessionStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	default:
		return inmemory.NewInMemorySessionStore()
	}
}
