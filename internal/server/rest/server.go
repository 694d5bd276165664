// Package rest exposes the health tracker services as a JSON API over gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Dependencies groups the services the API is built on. DB is only pinged
// by the readiness probe.
type Dependencies struct {
	Auth    AuthService
	Profile ProfileService
	Stats   StatsService
	Follow  FollowService
	DB      Pinger
}

type Server struct {
	address string
	prefix  string
	engine  *gin.Engine
	logger  logging.Logger

	auth    AuthService
	profile ProfileService
	stats   StatsService
	follow  FollowService
	db      Pinger
}

// NewServer builds the gin engine and registers every route under prefix.
func NewServer(address, prefix string, l logging.Logger, deps Dependencies) *Server {
	s := &Server{
		address: address,
		prefix:  prefix,
		engine:  gin.New(),
		logger:  l.With("module", "http_server"),
		auth:    deps.Auth,
		profile: deps.Profile,
		stats:   deps.Stats,
		follow:  deps.Follow,
		db:      deps.DB,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address, "prefix", s.prefix)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
