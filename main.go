package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	miniosdk "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/msomdec/cms/internal/config"
	"github.com/msomdec/cms/internal/domain"
	"github.com/msomdec/cms/internal/handler"
	"github.com/msomdec/cms/internal/repository/filesystem"
	"github.com/msomdec/cms/internal/repository/memory"
	"github.com/msomdec/cms/internal/repository/minio"
	"github.com/msomdec/cms/internal/repository/sqlite"
	"github.com/msomdec/cms/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sqlite.DB
	if cfg.NeedsDatabase() {
		db, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied", "path", cfg.DatabasePath)
	}

	docRepo, err := newDocumentRepository(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to open document store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	credRepo := newCredentialRepository(cfg, db)
	slog.Info("storage ready", "documents", cfg.Storage.Backend, "credentials", cfg.Credentials.Backend)

	docService := service.NewDocumentService(docRepo, service.NewRenderer())
	credService := service.NewCredentialService(credRepo, cfg.Auth.BcryptCost)
	sessions := handler.NewSessionManager(cfg.Session.Secret, cfg.Session.Secure)
	limiter := service.NewTokenBucket(ctx, cfg.Auth.SigninRate, cfg.Auth.SigninBurst)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, docService, credService, sessions, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newDocumentRepository(ctx context.Context, cfg *config.Config, db *sqlite.DB) (domain.DocumentRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendFilesystem:
		repo, err := filesystem.NewDocumentRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendSQLite:
		return db.Documents(), nil
	case config.BackendMemory:
		return memory.NewDocumentRepository(), nil
	case config.BackendMinio:
		client, err := miniosdk.New(cfg.Minio.Endpoint, &miniosdk.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		repo, err := minio.NewDocumentRepository(ctx, client, cfg.Minio.Bucket)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newCredentialRepository(cfg *config.Config, db *sqlite.DB) domain.CredentialRepository {
	if cfg.Credentials.Backend == config.CredentialsSQLite {
		return db.Credentials()
	}
	return filesystem.NewCredentialRepository(cfg.Credentials.File)
}
