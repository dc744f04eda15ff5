// Package bootstrap starts the service in phases: config, logging,
// storage, clients, and finally the HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonesrussell/docbridge/internal/api"
	"github.com/jonesrussell/docbridge/internal/calendar"
	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/confluence"
	"github.com/jonesrussell/docbridge/internal/database"
	"github.com/jonesrussell/docbridge/internal/events"
	"github.com/jonesrussell/docbridge/internal/handlers"
	"github.com/jonesrussell/docbridge/internal/importer"
	"github.com/jonesrussell/docbridge/internal/jira"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/narration"
	"github.com/jonesrussell/docbridge/internal/repository"
	"github.com/jonesrussell/docbridge/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Start runs the service until SIGINT or SIGTERM.
func Start() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting docbridge",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected", logger.String("host", cfg.Database.Host))

	store, err := storage.New(ctx, cfg.Minio)
	if err != nil {
		return err
	}
	log.Info("object store ready", logger.String("bucket", cfg.Minio.Bucket))

	publisher, err := events.NewPublisher(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	calendarSync, err := calendar.NewSync(ctx, cfg.Calendar, log)
	if err != nil {
		return err
	}

	jiraClient := jira.NewClient(cfg.Jira, log)
	confluenceClient := confluence.NewClient(cfg.Confluence, log)
	narrationClient := narration.NewClient(cfg.Narration, log)

	docRepo := repository.NewDocumentRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	importService := importer.NewService(docRepo, store, jiraClient, confluenceClient, publisher, log)

	handler := handlers.New(
		importService, docRepo, meetingRepo, projectRepo, store,
		jiraClient, publisher, calendarSync, narrationClient,
		cfg.Jira.DoneTransitionKeywords, log,
	)

	router := api.NewRouter(cfg, handler, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Info("http server listening", logger.String("addr", server.Addr))

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
