package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/hackorsnooze/internal/config"
	"github.com/patric-chuzhbe/hackorsnooze/internal/fakeapi"
	"github.com/patric-chuzhbe/hackorsnooze/internal/logger"
)

// FakeAPIServer runs the in-memory news API on cfg.FakeAPIAddr.
type FakeAPIServer struct {
	cfg         *config.Config
	httpHandler http.Handler
}

// NewFakeAPIServer initializes logging and the fake API handler.
func NewFakeAPIServer(cfg *config.Config) (*FakeAPIServer, error) {
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &FakeAPIServer{
		cfg:         cfg,
		httpHandler: fakeapi.New([]byte(cfg.TokenSigningKey)).Router(),
	}, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and stops the server upon termination.
func (s *FakeAPIServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("fake API running", "addr", s.cfg.FakeAPIAddr)

	server := &http.Server{
		Addr:              s.cfg.FakeAPIAddr,
		Handler:           s.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping the fake API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close flushes the logger.
func (s *FakeAPIServer) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Fprintln(os.Stderr, "Logger sync error:", err)
	}
}
