package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vireo-shop/vireo/internal/app"
	"github.com/vireo-shop/vireo/internal/bulk"
	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/kv"
	"github.com/vireo-shop/vireo/internal/seed"
	"github.com/vireo-shop/vireo/internal/taxonomy"
	"github.com/vireo-shop/vireo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	store, err := kv.NewRedis(ctx, cfg.RedisAddr, cfg.KVPrefix)
	if err != nil {
		logger.Error("open record store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close", slog.Any("error", err))
		}
	}()

	baseline, err := seed.Load()
	if err != nil {
		logger.Error("load embedded baseline", slog.Any("error", err))
		os.Exit(1)
	}

	repo := catalog.NewRepository(store)
	taxonomyService := taxonomy.NewService(repo, baseline.Settings.Flavors, logger)
	reconciler := catalog.NewReconciler(repo, catalog.BaselineData{
		Version:  seed.DataVersion,
		Products: baseline.Products,
		Brands:   baseline.Settings.Brands,
		Flavors:  baseline.Settings.Flavors,
		ImageFor: baseline.ImageFor,
	}, logger)
	bulkService := bulk.NewService(store, repo, taxonomyService, logger)

	exportJob := jobs.NewArtifactExportJob(bulkService, repo, logger, 0)
	reconcileJob := jobs.NewReconcileRefreshJob(reconciler, taxonomyService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskArtifactExport, Handler: exportJob.Handle},
			{Type: jobs.TaskReconcileRefresh, Handler: reconcileJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 2 * * *", Task: jobs.NewReconcileRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
