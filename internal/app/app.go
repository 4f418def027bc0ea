// Package app builds and runs the insights service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/api"
	"github.com/Akshatb2006/Linkedin-Insights/internal/authwall"
	"github.com/Akshatb2006/Linkedin-Insights/internal/cache"
	"github.com/Akshatb2006/Linkedin-Insights/internal/clock/system"
	"github.com/Akshatb2006/Linkedin-Insights/internal/config"
	"github.com/Akshatb2006/Linkedin-Insights/internal/extractor"
	"github.com/Akshatb2006/Linkedin-Insights/internal/fetcher/headless"
	"github.com/Akshatb2006/Linkedin-Insights/internal/fetcher/static"
	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
	"github.com/Akshatb2006/Linkedin-Insights/internal/logging"
	memorypublisher "github.com/Akshatb2006/Linkedin-Insights/internal/publisher/memory"
	gcppublisher "github.com/Akshatb2006/Linkedin-Insights/internal/publisher/pubsub"
	"github.com/Akshatb2006/Linkedin-Insights/internal/scraper"
	"github.com/Akshatb2006/Linkedin-Insights/internal/service"
	gcssnapshot "github.com/Akshatb2006/Linkedin-Insights/internal/snapshot/gcs"
	localsnapshot "github.com/Akshatb2006/Linkedin-Insights/internal/snapshot/local"
	memorysnapshot "github.com/Akshatb2006/Linkedin-Insights/internal/snapshot/memory"
	pgstore "github.com/Akshatb2006/Linkedin-Insights/internal/storage/postgres"
	"github.com/Akshatb2006/Linkedin-Insights/internal/summarizer"
	"github.com/Akshatb2006/Linkedin-Insights/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	apiServer *api.Server

	store           *pgstore.Store
	cacheLayer      insights.Cache
	headlessFetcher *headless.Fetcher
	pubsubClient    *pubsub.Client
	pubsubPublisher *gcppublisher.Publisher
	storageClient   *storage.Client
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	telemetry.Init()

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies", zap.Int("port", cfg.Server.Port))

	clock := system.New()

	app.store, err = pgstore.NewStore(ctx, pgstore.StoreConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres init failed: %w", err)
	}
	if err := app.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	app.cacheLayer = cache.New(ctx, cache.Options{
		Enabled:  cfg.Cache.Enabled,
		RedisURL: cfg.Cache.RedisURL,
	}, clock, logger.Named("cache"))

	probe := static.New(static.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.ScrapeTimeout(),
	})

	var headlessFetcher insights.Fetcher
	if cfg.Headless.Enabled {
		app.headlessFetcher, err = headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Scraper.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("headless init failed: %w", err)
		}
		headlessFetcher = app.headlessFetcher
	}

	snapshots, err := app.setupSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := app.setupPublisher(ctx)
	if err != nil {
		return nil, err
	}

	pipeline := scraper.New(
		probe,
		headlessFetcher,
		authwall.NewHeuristic(cfg.Headless.PromotionThresh),
		extractor.New(clock),
		snapshots,
		clock,
		logger.Named("scraper"),
		scraper.Config{
			Timeout:        3 * cfg.ScrapeTimeout(),
			PostsLimit:     cfg.Scraper.PostsLimit,
			EmployeesLimit: cfg.Scraper.EmployeesLimit,
			Scrolls:        cfg.Headless.ScrollCount,
			SnapshotPrefix: cfg.Snapshots.Prefix,
		},
	)

	summarizer, err := app.setupSummarizer(ctx)
	if err != nil {
		return nil, err
	}

	pageService := service.New(
		app.store,
		app.cacheLayer,
		pipeline,
		summarizer,
		publisher,
		clock,
		logger.Named("service"),
		service.Config{
			CacheTTL:    cfg.CacheTTL(),
			EventsTopic: cfg.Events.TopicName,
		},
	)

	app.apiServer = api.NewServer(pageService, logger.Named("api"), api.Config{
		RequestTimeout: 3*cfg.ScrapeTimeout() + 30*time.Second,
		AuthEnabled:    cfg.Auth.Enabled,
		APIKey:         cfg.Auth.APIKey,
	})

	return app, nil
}

func (a *App) setupSnapshots(ctx context.Context) (insights.SnapshotStore, error) {
	switch a.cfg.Snapshots.Provider {
	case "gcs":
		a.logger.Info("using GCS snapshot store", zap.String("bucket", a.cfg.Snapshots.GCSBucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		a.storageClient = client
		store, err := gcssnapshot.New(client, gcssnapshot.Config{Bucket: a.cfg.Snapshots.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("gcs snapshot store init failed: %w", err)
		}
		return store, nil
	case "local":
		a.logger.Info("using local snapshot store", zap.String("dir", a.cfg.Snapshots.BaseDir))
		store, err := localsnapshot.New(localsnapshot.Config{BaseDir: a.cfg.Snapshots.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("local snapshot store init failed: %w", err)
		}
		return store, nil
	case "memory":
		a.logger.Info("using in-memory snapshot store")
		return memorysnapshot.New(), nil
	default:
		a.logger.Info("snapshot archiving disabled")
		return nil, nil
	}
}

func (a *App) setupPublisher(ctx context.Context) (insights.Publisher, error) {
	switch a.cfg.Events.Provider {
	case "pubsub":
		a.logger.Info("using Pub/Sub event publisher",
			zap.String("project", a.cfg.Events.ProjectID),
			zap.String("topic", a.cfg.Events.TopicName),
		)
		client, err := pubsub.NewClient(ctx, a.cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub client init failed: %w", err)
		}
		a.pubsubClient = client
		a.pubsubPublisher = gcppublisher.New(client.Topic(a.cfg.Events.TopicName))
		return a.pubsubPublisher, nil
	case "memory":
		a.logger.Info("using in-memory event publisher")
		return memorypublisher.New(), nil
	default:
		a.logger.Info("event publishing disabled")
		return nil, nil
	}
}

func (a *App) setupSummarizer(ctx context.Context) (insights.Summarizer, error) {
	if !a.cfg.AIEnabled() {
		a.logger.Info("AI summarizer disabled")
		return summarizer.Disabled{}, nil
	}
	a.logger.Info("using Gemini summarizer", zap.String("model", a.cfg.AI.Model))
	gemini, err := summarizer.NewGemini(ctx, a.cfg.AI.APIKey, a.cfg.AI.Model, a.logger.Named("summarizer"))
	if err != nil {
		return nil, fmt.Errorf("gemini init failed: %w", err)
	}
	return gemini, nil
}

// Run starts the application and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	return a.Close()
}

// Close gracefully shuts down the application.
func (a *App) Close() error {
	if a.headlessFetcher != nil {
		a.headlessFetcher.Close()
	}
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Stop()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.storageClient != nil {
		if err := a.storageClient.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.cacheLayer != nil {
		if err := a.cacheLayer.Close(); err != nil {
			a.logger.Warn("cache close failed", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if err := a.logger.Sync(); err != nil {
		_ = err // stderr sync fails on some platforms; nothing to do
	}
	a.logger.Info("shutdown complete")
	return nil
}
