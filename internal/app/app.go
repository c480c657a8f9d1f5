// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	archivememory "github.com/tactipus/courtlistener/internal/archive/memory"
	archivepostgres "github.com/tactipus/courtlistener/internal/archive/postgres"
	"github.com/tactipus/courtlistener/internal/logging"
	queuememory "github.com/tactipus/courtlistener/internal/queue/memory"
	queuepubsub "github.com/tactipus/courtlistener/internal/queue/pubsub"
	"github.com/tactipus/courtlistener/internal/scraper"
	storagegcs "github.com/tactipus/courtlistener/internal/storage/gcs"
	storagelocal "github.com/tactipus/courtlistener/internal/storage/local"
	storagememory "github.com/tactipus/courtlistener/internal/storage/memory"
)

// App holds all the shared, long-lived services for the application:
// the logger, the archive, the blob store, and the task queue. It is
// initialized once at startup and handed to the commands that need it.
type App struct {
	logger  *zap.Logger
	archive scraper.Archive
	blobs   scraper.BlobStore
	queue   scraper.TaskQueue

	opsServer *http.Server
	closeFns  []func()
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger { return a.logger }

// GetArchive exposes the configured archive.
func (a *App) GetArchive() scraper.Archive { return a.archive }

// GetBlobStore exposes the configured blob storage provider.
func (a *App) GetBlobStore() scraper.BlobStore { return a.blobs }

// GetQueue returns the task queue used to hand off async processing.
func (a *App) GetQueue() scraper.TaskQueue { return a.queue }

// NewApp creates and initializes an App from the application's
// configuration. It is the central point for service initialization and
// fails fast when any critical service cannot be built.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")
	a := &App{logger: l}

	// 1. Archive (relational persistence).
	switch provider := viper.GetString("database.provider"); provider {
	case "postgres":
		dsn := viper.GetString("database.postgres.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database provider is 'postgres' but database.postgres.dsn is not set")
		}
		l.Info("Connecting to PostgreSQL...")
		pg, err := archivepostgres.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("initialize archive: %w", err)
		}
		a.archive = pg
		a.closeFns = append(a.closeFns, pg.Close)
	case "memory":
		l.Warn("Using in-memory archive. Nothing will survive shutdown.")
		a.archive = archivememory.New()
	default:
		return nil, fmt.Errorf("unknown database provider: %s", provider)
	}

	// 2. Blob storage for the original files.
	switch provider := viper.GetString("storage.provider"); provider {
	case "gcs":
		bucket := viper.GetString("storage.gcs.bucket_name")
		if bucket == "" {
			return nil, fmt.Errorf("storage provider is 'gcs' but storage.gcs.bucket_name is not set")
		}
		l.Info("Using GCS storage provider", zap.String("bucket", bucket))
		store, err := storagegcs.New(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("initialize storage: %w", err)
		}
		a.blobs = store
	case "local":
		baseDir := viper.GetString("storage.local.base_dir")
		l.Info("Using local storage provider", zap.String("base_dir", baseDir))
		store, err := storagelocal.New(baseDir)
		if err != nil {
			return nil, fmt.Errorf("initialize storage: %w", err)
		}
		a.blobs = store
	case "memory":
		l.Warn("Using in-memory storage provider. Downloaded files will be discarded.")
		a.blobs = storagememory.NewBlobStore()
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", provider)
	}

	// 3. Task queue for async processing handoff.
	switch provider := viper.GetString("queue.provider"); provider {
	case "pubsub":
		projectID := viper.GetString("queue.gcp.project_id")
		topicID := viper.GetString("queue.gcp.topic_id")
		if projectID == "" || topicID == "" {
			return nil, fmt.Errorf("queue provider is 'pubsub' but project_id or topic_id is not set")
		}
		l.Info("Connecting to GCP Pub/Sub", zap.String("topic", topicID))
		q, err := queuepubsub.New(ctx, projectID, topicID)
		if err != nil {
			return nil, fmt.Errorf("initialize queue: %w", err)
		}
		a.queue = q
		a.closeFns = append(a.closeFns, func() {
			if err := q.Close(); err != nil {
				l.Warn("Error closing queue client", zap.Error(err))
			}
		})
	case "memory":
		l.Info("Using in-memory queue provider. Tasks will not reach workers.")
		a.queue = queuememory.NewQueue()
	default:
		return nil, fmt.Errorf("unknown queue provider: %s", provider)
	}

	a.startOpsServer(viper.GetString("ops.listen_addr"))

	l.Info("Application services initialized successfully.")
	return a, nil
}

// startOpsServer serves /metrics and /healthz for operators.
func (a *App) startOpsServer(addr string) {
	if addr == "" {
		return
	}
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.opsServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("Starting ops server", zap.String("addr", addr))
		if err := a.opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Ops server failed", zap.Error(err))
		}
	}()
}

// Close gracefully shuts down all services in the App container.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")

	if a.opsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.opsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("Error shutting down ops server", zap.Error(err))
		}
	}
	for _, closeFn := range a.closeFns {
		closeFn()
	}

	// Flush buffered log entries before the process exits.
	if err := a.logger.Sync(); err != nil {
		// Best effort; logging itself may be the thing failing.
		a.logger.Warn("Error syncing logger on shutdown", zap.Error(err))
	}
}
