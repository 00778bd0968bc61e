package http

import (
	"context"
	"net/http"

	"github.com/jmehdipour/lunchly/internal/http/middleware"
	"github.com/jmehdipour/lunchly/internal/service/customers"
	"github.com/jmehdipour/lunchly/internal/util"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

// NewServer builds the echo instance. Metrics collectors are registered by
// the caller; /metrics serves the default gatherer.
func NewServer(svc *customers.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: util.RequestID}),
		middleware.RequestLogMiddleware(log),
	)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// routes
	v1 := e.Group("/v1")
	v1.GET("/customers", listCustomersHandler(svc, log))
	v1.POST("/customers", createCustomerHandler(svc, log))
	v1.GET("/customers/best", bestCustomersHandler(svc, log))
	v1.GET("/customers/:id", getCustomerHandler(svc, log))
	v1.PUT("/customers/:id", updateCustomerHandler(svc, log))
	v1.GET("/customers/:id/reservations", listReservationsHandler(svc, log))
	v1.POST("/customers/:id/reservations", addReservationHandler(svc, log))

	return &Server{e: e, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
