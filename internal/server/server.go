// Package server exposes the task table over a small JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/carryover"
)

// Server is the liftlog HTTP API.
type Server struct {
	engine *carryover.Engine
	clock  calendar.Clock
	log    *slog.Logger
	router *gin.Engine
}

// NewServer creates the API server. log may be nil.
func NewServer(engine *carryover.Engine, clock calendar.Clock, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		engine: engine,
		clock:  clock,
		log:    log,
		router: router,
	}

	api := router.Group("/api")
	api.POST("/rollover", s.handleRollover)

	days := api.Group("", s.followClock)
	{
		days.GET("/days", s.handleDays)
		days.GET("/days/:key", s.handleDay)
		days.POST("/days/:key/tasks/:idx/complete", s.handleComplete)
		days.POST("/days/:key/tasks/:idx/skip-flag", s.handleSkipFlag)
		days.POST("/days/:key/tasks/:idx/bump", s.handleBump)
		days.POST("/days/:key/carry", s.handleCarry)
		days.GET("/export.csv", s.handleExportCSV)
	}

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// followClock rolls the window over once the clock passes midnight, so a
// long-running server never serves yesterday's table.
func (s *Server) followClock(c *gin.Context) {
	now := s.clock.Now()
	if !s.engine.Window().Today().Equal(calendar.StartOfDay(now)) {
		if _, err := s.engine.Rollover(now); err != nil {
			s.log.Error("rollover failed", "error", err)
		}
	}
	c.Next()
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
