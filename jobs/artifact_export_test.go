package jobs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/bulk"
	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/kv"
	"github.com/vireo-shop/vireo/internal/taxonomy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExportFixture(t *testing.T) (*ArtifactExportJob, catalog.Repository) {
	t.Helper()
	store := kv.NewMemory()
	repo := catalog.NewRepository(store)
	require.NoError(t, repo.SaveProducts(context.Background(), []catalog.Product{
		{ID: "1001", Name: "Glacier Mint", Brand: "Polar Labs", Price: 24, Stock: 3},
	}))
	tax := taxonomy.NewService(repo, nil, testLogger())
	svc := bulk.NewService(store, repo, tax, testLogger())
	return NewArtifactExportJob(svc, repo, testLogger(), time.Millisecond), repo
}

func TestArtifactExportWritesAllFormats(t *testing.T) {
	ctx := context.Background()
	job, _ := newExportFixture(t)
	dir := t.TempDir()

	task, err := NewArtifactExportTask(ArtifactExportPayload{OutputDir: dir})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	for _, name := range []string{"products.json", "products.csv", "products.xlsx", "store-bundle.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		require.NotZero(t, info.Size(), name)
	}
}

func TestArtifactExportSelectedFormats(t *testing.T) {
	ctx := context.Background()
	job, _ := newExportFixture(t)
	dir := t.TempDir()

	task, err := NewArtifactExportTask(ArtifactExportPayload{OutputDir: dir, Formats: []string{"csv"}})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "products.csv", entries[0].Name())
}

func TestArtifactExportRespectsCancellation(t *testing.T) {
	job, _ := newExportFixture(t)
	job.pacing = time.Hour
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	task, err := NewArtifactExportTask(ArtifactExportPayload{OutputDir: dir})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- job.Handle(ctx, task) }()
	// The first artifact writes immediately; cancel during the pacing wait.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not observe cancellation")
	}
}
