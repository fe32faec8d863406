// Package api exposes the controller over REST: setpoint writes, the cached
// live status, and the polled history. It is pure façade: every endpoint
// either reads the controller layer's cache or delegates one write to it,
// and never drives the serial link directly.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arloliu/go-rkc/controller"
	"github.com/arloliu/go-rkc/logger"
	"github.com/arloliu/go-rkc/poller"
)

// Device is the controller surface the API needs.
type Device interface {
	WriteSetpoint(v float64) error
	Status() controller.Status
	LinkUp() bool
}

// HistoryReader reads back polled history records.
type HistoryReader interface {
	Tail(n int) ([]poller.Entry, error)
}

// DefaultHistoryLines is the history tail size when the request does not
// specify one.
const DefaultHistoryLines = 100

// Server is the HTTP server hosting the REST façade.
type Server struct {
	server  *http.Server
	router  *gin.Engine
	device  Device
	history HistoryReader
	logger  logger.Logger
}

// New creates the REST server bound to addr ("host:port").
func New(addr string, device Device, history HistoryReader, l logger.Logger) *Server {
	if l == nil {
		l = logger.GetLogger()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		device:  device,
		history: history,
		logger:  l,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	ctrl := s.router.Group("/controller")
	{
		ctrl.POST("/setpoint", s.handleSetSetpoint)
		ctrl.GET("/status", s.handleStatus)
		ctrl.GET("/history", s.handleHistory)
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("api: listening", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: serve: %w", err)
	}

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the gin engine, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
