package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vireo-shop/vireo/internal/bulk"
	"github.com/vireo-shop/vireo/internal/catalog"
)

// ExportPacing is the fixed delay between artifact writes. Bulk export is
// deliberately rate limited to one artifact per interval instead of firing
// everything at once.
const ExportPacing = 200 * time.Millisecond

// ArtifactExportJob writes catalog exports to an output directory.
type ArtifactExportJob struct {
	service *bulk.Service
	repo    catalog.Repository
	logger  *slog.Logger
	pacing  time.Duration
}

// NewArtifactExportJob wires the job. A zero pacing falls back to the
// default interval.
func NewArtifactExportJob(service *bulk.Service, repo catalog.Repository, logger *slog.Logger, pacing time.Duration) *ArtifactExportJob {
	if pacing <= 0 {
		pacing = ExportPacing
	}
	return &ArtifactExportJob{service: service, repo: repo, logger: logger, pacing: pacing}
}

// Handle processes TaskArtifactExport tasks.
func (j *ArtifactExportJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ArtifactExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OutputDir == "" {
		payload.OutputDir = "exports"
	}
	formats := payload.Formats
	if len(formats) == 0 {
		formats = []string{"json", "csv", "xlsx", "bundle"}
	}
	if err := os.MkdirAll(payload.OutputDir, 0o755); err != nil {
		return err
	}

	products, err := j.repo.LoadProducts(ctx)
	if err != nil {
		return err
	}

	for i, format := range formats {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.pacing):
			}
		}
		if err := j.write(ctx, payload.OutputDir, format, products); err != nil {
			return err
		}
		j.logger.Info("export artifact written", "format", format, "dir", payload.OutputDir)
	}
	return nil
}

func (j *ArtifactExportJob) write(ctx context.Context, dir, format string, products []catalog.Product) error {
	switch format {
	case "json":
		return j.writeFile(filepath.Join(dir, "products.json"), func(f *os.File) error {
			return bulk.WriteJSON(f, products)
		})
	case "csv":
		return j.writeFile(filepath.Join(dir, "products.csv"), func(f *os.File) error {
			return bulk.WriteCSV(f, products)
		})
	case "xlsx":
		return j.writeFile(filepath.Join(dir, "products.xlsx"), func(f *os.File) error {
			return bulk.WriteXLSX(f, products)
		})
	case "bundle":
		bundle, err := j.service.BuildBundle(ctx)
		if err != nil {
			return err
		}
		return j.writeFile(filepath.Join(dir, "store-bundle.json"), func(f *os.File) error {
			return bulk.WriteBundle(f, bundle)
		})
	default:
		j.logger.Warn("unknown export format skipped", "format", format)
		return nil
	}
}

func (j *ArtifactExportJob) writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
