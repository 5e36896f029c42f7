package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/logging"
)

// ServeCmd runs the HTTP server until SIGINT or SIGTERM.
type ServeCmd struct {
	Addr    string `help:"Listen address, overrides BLOG_ADDR"`
	Retries int    `help:"Dispatcher retries for save and import commands" default:"1"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.config(g)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := g.container(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	logger := logging.ModuleLogger(container.LoggerProvider(), "blog.serve")

	cmds, err := container.CommandHandlers(nil, di.CommandHooks{})
	if err != nil {
		return err
	}
	unsubscribe := di.SubscribeCommands(cmds, s.Retries)
	defer unsubscribe()

	handler, err := container.HTTPHandler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("blog.serve.listening", "addr", cfg.Server.Addr, "reader_path", cfg.Server.ReaderPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("blog.serve.shutdown", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
