// Package server wires the HTTP surface: routing, request logging and
// graceful shutdown around the rest handlers.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"catalog-engine/config"
	appMiddleware "catalog-engine/middleware"
	"catalog-engine/rest"
)

type Server struct {
	config *config.Config
	echo   *echo.Echo
	log    *slog.Logger
}

// Handlers groups the endpoint handlers the server routes to.
type Handlers struct {
	Filters  *rest.FiltersHandler
	Products *rest.ProductsHandler
	Reindex  *rest.ReindexHandler
	Health   *rest.HealthHandler
}

func New(cfg *config.Config, handlers Handlers, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = cfg.HTTP.ReadHeaderTimeout

	e.Use(middleware.Recover())
	e.Use(appMiddleware.Telemetry())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.GET("/v1/health", handlers.Health.Handle)
	e.GET("/v1/catalog/filters", handlers.Filters.Handle)
	e.GET("/v1/catalog/products", handlers.Products.Handle)
	e.POST("/v1/admin/reindex", handlers.Reindex.Handle)

	return &Server{config: cfg, echo: e, log: log}
}

func (s *Server) Start() error {
	s.log.Info("starting HTTP server", "addr", s.config.HTTP.Addr)
	err := s.echo.Start(s.config.HTTP.Addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
