package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coursevault-backend/handlers"
	"coursevault-backend/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}
}

func runServe(cmd *cobra.Command, ctx *commandContext) error {
	a, err := ctx.buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Courses:        a.courses,
		Titles:         a.titles,
		CoursesDir:     a.cfg.CoursesDir,
		AllowedOrigins: a.cfg.AllowedOrigins,
		Logger:         a.logger,
	})

	// No WriteTimeout: refresh-cache runs one remote lookup per cached title.
	server := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	coursesDir, _ := filepath.Abs(a.cfg.CoursesDir)
	a.logger.Info("starting server",
		slog.String("addr", server.Addr),
		slog.String("courses_dir", coursesDir),
		slog.String("titles_dir", a.cfg.TitlesDir),
		slog.Int("titles_cached", a.cache.Len()))

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	a.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("graceful shutdown failed", logging.Error(err))
		_ = server.Close()
	}
	a.logger.Info("server stopped")
	return nil
}
