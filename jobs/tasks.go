// Package jobs defines the background task queue: paced artifact exports and
// the scheduled baseline refresh.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskArtifactExport exports the catalog to interchange artifacts on disk.
	TaskArtifactExport = "export:artifacts"
	// TaskReconcileRefresh re-runs the baseline reconciliation pass.
	TaskReconcileRefresh = "catalog:reconcile"
)

// ArtifactExportPayload names the artifacts to produce and where.
type ArtifactExportPayload struct {
	OutputDir string   `json:"outputDir"`
	Formats   []string `json:"formats"`
}

// NewArtifactExportTask constructs an export task. Empty formats means all.
func NewArtifactExportTask(payload ArtifactExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskArtifactExport, data), nil
}

// NewReconcileRefreshTask constructs a reconcile task.
func NewReconcileRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileRefresh, nil)
}
