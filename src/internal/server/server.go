package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg  *config.Configuration
	deps *dependency.Manager
	http *http.Server
}

// New connects every backend and registers the routes.
func New(cfg *config.Configuration) (*Server, error) {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	deps, err := dependency.Connect(gin.New(), cfg)
	if err != nil {
		return nil, err
	}
	SetupRoutes(deps)

	return &Server{
		cfg:  cfg,
		deps: deps,
		http: &http.Server{
			Addr:           ":" + cfg.Server.Port,
			Handler:        deps.Router,
			ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}, nil
}

// Start bootstraps storage, serves until SIGINT or SIGTERM and then shuts down.
func (s *Server) Start() error {
	defer s.deps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Database.Timeout)*time.Second+shutdownTimeout)
	err := s.deps.Bootstrap(ctx)
	cancel()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.http.Addr).Info("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
		return err
	}

	log.Info("HTTP server stopped")
	return nil
}
