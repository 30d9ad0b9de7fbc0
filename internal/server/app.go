// Package server initializes and runs the application server. It wires the
// item directory, the storage credential service and the HTTP API, and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/libriahq/libria/internal/logging"
	"github.com/libriahq/libria/internal/server/config"
	"github.com/libriahq/libria/internal/server/httpapi"
	"github.com/libriahq/libria/internal/server/repositories/repomanager"
	"github.com/libriahq/libria/internal/server/services"
	"github.com/libriahq/libria/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	library *services.LibraryService
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	storageService := storage.NewService(storage.S3Settings{
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		BaseEndpoint:    cfg.S3.BaseEndpoint,
	}, logger)

	library := services.NewLibraryService(repos.Items(), storageService, services.Options{
		AllowAnonymousUploads: cfg.Auth.AllowAnonymousUploads,
		AnonymousUploadID:     cfg.Auth.AnonymousUploadID,
		UploadExpiry:          cfg.Uploads.CredentialExpiry,
		DownloadExpiry:        cfg.Uploads.DownloadExpiry,
	}, logger)

	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, library, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		repos:   repos,
		library: library,
		handler: handler.Router(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until ctx is cancelled or an OS signal arrives,
// then shuts the server down within the configured timeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.Server.Addr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	return nil
}
