package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/taxonomy"
)

// ReconcileRefreshJob forces a baseline merge pass and re-derives the flavor
// catalog, mirroring what every page load did in the original system.
type ReconcileRefreshJob struct {
	reconciler *catalog.Reconciler
	taxonomy   *taxonomy.Service
	logger     *slog.Logger
}

// NewReconcileRefreshJob wires the job.
func NewReconcileRefreshJob(reconciler *catalog.Reconciler, tax *taxonomy.Service, logger *slog.Logger) *ReconcileRefreshJob {
	return &ReconcileRefreshJob{reconciler: reconciler, taxonomy: tax, logger: logger}
}

// Handle processes TaskReconcileRefresh tasks.
func (j *ReconcileRefreshJob) Handle(ctx context.Context, _ *asynq.Task) error {
	outcome, err := j.reconciler.Run(ctx, true)
	if err != nil {
		return err
	}
	if outcome.State == catalog.StateCleared {
		j.logger.Info("scheduled reconcile skipped, store manually cleared")
		return nil
	}
	if err := j.taxonomy.Recompute(ctx); err != nil {
		return err
	}
	j.logger.Info("scheduled reconcile finished", "state", string(outcome.State),
		"adopted", outcome.Adopted, "merged", outcome.Merged, "preserved", outcome.Preserved)
	return nil
}
