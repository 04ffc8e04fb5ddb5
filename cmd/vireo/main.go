package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vireo-shop/vireo/internal/app"
	"github.com/vireo-shop/vireo/internal/bulk"
	"github.com/vireo-shop/vireo/internal/cart"
	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/featured"
	"github.com/vireo-shop/vireo/internal/platform/kv"
	"github.com/vireo-shop/vireo/internal/seed"
	"github.com/vireo-shop/vireo/internal/settings"
	"github.com/vireo-shop/vireo/internal/taxonomy"
	"github.com/vireo-shop/vireo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open record store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	baseline, err := seed.Load()
	if err != nil {
		logger.Error("load embedded baseline", slog.Any("error", err))
		os.Exit(1)
	}

	repo := catalog.NewRepository(store)
	catalogService := catalog.NewService(repo, logger)
	taxonomyService := taxonomy.NewService(repo, baseline.Settings.Flavors, logger)
	catalogService.SetRecomputer(taxonomyService)

	reconciler := catalog.NewReconciler(repo, catalog.BaselineData{
		Version:  seed.DataVersion,
		Products: baseline.Products,
		Brands:   baseline.Settings.Brands,
		Flavors:  baseline.Settings.Flavors,
		ImageFor: baseline.ImageFor,
	}, logger)

	// The reconciler settles the catalog before anything reads it, then the
	// taxonomy is re-derived from the settled state.
	outcome, err := reconciler.Run(ctx, false)
	if err != nil {
		logger.Error("startup reconcile", slog.Any("error", err))
		os.Exit(1)
	}
	if outcome.State != catalog.StateCleared {
		if err := taxonomyService.Recompute(ctx); err != nil {
			logger.Error("startup flavor recompute", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("catalog reconciled", slog.String("state", string(outcome.State)))

	featuredService := featured.NewService(store, repo, logger)
	cartService := cart.NewService(store, repo, logger)
	settingsService := settings.NewService(store, repo, settings.Defaults{
		StoreName:    baseline.Settings.StoreName,
		SliderImages: baseline.Settings.SliderImages,
	}, logger)
	bulkService := bulk.NewService(store, repo, taxonomyService, logger)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CatalogHandler:  catalog.NewHandler(logger, catalogService, reconciler, taxonomyService),
		TaxonomyHandler: taxonomy.NewHandler(logger, taxonomyService),
		FeaturedHandler: featured.NewHandler(logger, featuredService),
		CartHandler:     cart.NewHandler(logger, cartService),
		BulkHandler:     bulk.NewHandler(logger, bulkService, repo),
		SettingsHandler: settings.NewHandler(logger, settingsService),
		JobsClient:      jobsClient,
		JobsHandler:     jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg *app.Config) (kv.Store, func(), error) {
	switch cfg.KVBackend {
	case "postgres":
		store, err := kv.NewPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		return kv.NewMemory(), func() {}, nil
	default:
		store, err := kv.NewRedis(ctx, cfg.RedisAddr, cfg.KVPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
