// Command seed force-populates a live record store from the embedded
// baseline, clearing the manually-cleared flag first. One-shot operator tool.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/vireo-shop/vireo/internal/app"
	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/kv"
	"github.com/vireo-shop/vireo/internal/seed"
	"github.com/vireo-shop/vireo/internal/taxonomy"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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
	defer store.Close()

	baseline, err := seed.Load()
	if err != nil {
		logger.Error("load embedded baseline", slog.Any("error", err))
		os.Exit(1)
	}

	repo := catalog.NewRepository(store)
	reconciler := catalog.NewReconciler(repo, catalog.BaselineData{
		Version:  seed.DataVersion,
		Products: baseline.Products,
		Brands:   baseline.Settings.Brands,
		Flavors:  baseline.Settings.Flavors,
		ImageFor: baseline.ImageFor,
	}, logger)

	outcome, err := reconciler.Reseed(ctx)
	if err != nil {
		logger.Error("reseed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := taxonomy.NewService(repo, baseline.Settings.Flavors, logger).Recompute(ctx); err != nil {
		logger.Error("recompute flavors", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("store seeded",
		slog.String("state", string(outcome.State)),
		slog.Int("adopted", outcome.Adopted),
		slog.Int("merged", outcome.Merged),
		slog.Int("preserved", outcome.Preserved))
}
