package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"i4.energy/across/tata/service"
)

// statusTimeout bounds how long a request waits for the service loop,
// which may be busy with a location fix.
const statusTimeout = 5 * time.Second

// Tracker is the part of the service the API talks to.
type Tracker interface {
	Status(ctx context.Context) (service.Snapshot, error)
	RequestRefresh(ctx context.Context) (service.Snapshot, error)
}

// Server handles incoming HTTP requests for inspecting the tracker
type Server struct {
	engine  *gin.Engine
	tracker Tracker
	logger  zerolog.Logger
}

func NewServer(tracker Tracker, logger zerolog.Logger) *Server {
	engine := gin.New()
	s := &Server{engine: engine, tracker: tracker, logger: logger}

	engine.Use(gin.Recovery(), s.requestLogger())
	engine.GET("/health", s.handleHealth)
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.POST("/refresh", s.handleRefresh)
	}
	return s
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := s.logger.Info()
		if status >= 400 {
			event = s.logger.Warn()
		}
		if status >= 500 {
			event = s.logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

func (s *Server) sendError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrStopped):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	c.JSON(code, gin.H{"message": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	snap, err := s.tracker.Status(ctx)
	if errors.Is(err, service.ErrStopped) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopped"})
		return
	}
	if err != nil {
		// The loop is alive but busy.
		c.JSON(http.StatusOK, gin.H{"status": "busy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": snap.Uptime})
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	snap, err := s.tracker.Status(ctx)
	if err != nil {
		s.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleRefresh queues a battery and location check and answers with the
// state from before it.
func (s *Server) handleRefresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	snap, err := s.tracker.RequestRefresh(ctx)
	if err != nil {
		s.sendError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}
