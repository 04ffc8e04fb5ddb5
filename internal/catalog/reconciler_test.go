package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/platform/kv"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func testBaseline() BaselineData {
	return BaselineData{
		Version: "2025.08.2",
		Products: []ProductRecord{
			{
				ID: "1001", Name: "Glacier Mint", Brand: "Polar Labs",
				Price: ptr(24.0), Stock: ptr(12), Image: ptr("img/glacier.png"),
				Flavors: []Flavor{{Name: "Mint", Image: "img/glacier.png"}},
			},
			{
				ID: "1002", Name: "Mango Drift", Brand: "Tropic Haus",
				Price: ptr(19.5), Stock: ptr(8), Image: ptr("img/mango.png"),
			},
		},
		Brands:  []string{"Polar Labs", "Tropic Haus"},
		Flavors: []string{"Mint", "Mango"},
		ImageFor: func(path string) (string, bool) {
			if path == "img/glacier.png" {
				return "data:image/png;base64,AAAA", true
			}
			return "", false
		},
	}
}

func newTestReconciler(t *testing.T) (*Reconciler, Repository, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	repo := NewRepository(store)
	return NewReconciler(repo, testBaseline(), testLogger()), repo, store
}

func TestFreshInstallAdoptsBaseline(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, StateFresh, outcome.State)
	require.Equal(t, 2, outcome.Adopted)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// An embedded image replaces the conventional path; an unresolvable
	// path stays as written.
	require.Equal(t, "data:image/png;base64,AAAA", products[0].Image)
	require.Equal(t, "data:image/png;base64,AAAA", products[0].Flavors[0].Image)
	require.Equal(t, "img/mango.png", products[1].Image)

	version, err := repo.DataVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025.08.2", version)
}

func TestFreshInstallDerivesBrands(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	_, err := rec.Run(ctx, false)
	require.NoError(t, err)

	brands, err := repo.LoadBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, []Brand{
		{Name: "Polar Labs", DisplayOrder: 0},
		{Name: "Tropic Haus", DisplayOrder: 1},
	}, brands)
}

func TestClearedFlagBlocksRepopulation(t *testing.T) {
	ctx := context.Background()
	rec, repo, store := newTestReconciler(t)

	require.NoError(t, repo.SetManuallyCleared(ctx, true))
	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, StateCleared, outcome.State)

	// Nothing was written besides the flag itself.
	require.Equal(t, []string{kv.KeyManuallyCleared}, store.Keys())
}

func TestVersionMatchSkipsMerge(t *testing.T) {
	ctx := context.Background()
	rec, _, _ := newTestReconciler(t)

	_, err := rec.Run(ctx, false)
	require.NoError(t, err)

	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, StateCurrent, outcome.State)
}

func TestMergeLocalFieldsWin(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	// Operator edits on an outdated version: a custom price and an explicit
	// zero stock, both of which must survive the merge.
	locals := []ProductRecord{
		{
			ID: "1001", Name: "Glacier Mint XL", Brand: "Polar Labs",
			Price: ptr(29.0), Stock: ptr(0), Description: ptr("house blend"),
		},
	}
	require.NoError(t, kv.SetJSON(ctx, storeOf(repo), kv.KeyProducts, locals))
	require.NoError(t, repo.SetDataVersion(ctx, "2025.07.0"))

	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, StateMerged, outcome.State)
	require.Equal(t, 1, outcome.Merged)
	require.Equal(t, 1, outcome.Adopted) // 1002 was missing locally

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)

	var merged Product
	for _, p := range products {
		if p.ID == "1001" {
			merged = p
		}
	}
	require.Equal(t, "Glacier Mint XL", merged.Name)
	require.Equal(t, 29.0, merged.Price)
	require.Equal(t, 0, merged.Stock)
	require.Equal(t, "house blend", merged.Description)
	// Baseline flavors arrive for locals that lacked them.
	require.Equal(t, "Mint", merged.Flavor)
}

func TestMergeEmbeddedImageBeatsLocalPath(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	locals := []ProductRecord{
		{ID: "1001", Name: "Glacier Mint", Brand: "Polar Labs", Image: ptr("C:/old/machine/path.png")},
	}
	require.NoError(t, kv.SetJSON(ctx, storeOf(repo), kv.KeyProducts, locals))

	_, err := rec.Run(ctx, false)
	require.NoError(t, err)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == "1001" {
			require.Equal(t, "data:image/png;base64,AAAA", p.Image)
		}
	}
}

func TestMergeKeepsLegacySingleFlavor(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	// The local record predates the flavors list: a bare flavor string must
	// come through the merge as a local-only flavor, not vanish under the
	// baseline's list.
	locals := []ProductRecord{
		{ID: "1001", Name: "Glacier Mint", Brand: "Polar Labs", Flavor: "Vanilla Custard"},
	}
	require.NoError(t, kv.SetJSON(ctx, storeOf(repo), kv.KeyProducts, locals))

	_, err := rec.Run(ctx, false)
	require.NoError(t, err)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		if p.ID != "1001" {
			continue
		}
		names := make([]string, 0, len(p.Flavors))
		for _, f := range p.Flavors {
			names = append(names, f.Name)
		}
		require.Equal(t, []string{"Mint", "Vanilla Custard"}, names)
		require.Equal(t, "Mint", p.Flavor)
	}
}

func TestMergePreservesLocalOnlyProducts(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	locals := []ProductRecord{
		{ID: "9001", Name: "Operator Special", Brand: "Calle Ocho", Price: ptr(10.0)},
	}
	require.NoError(t, kv.SetJSON(ctx, storeOf(repo), kv.KeyProducts, locals))

	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Preserved)
	require.Equal(t, 2, outcome.Adopted)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "Operator Special", products[2].Name)
}

func TestMergeMatchesNumericIDs(t *testing.T) {
	ctx := context.Background()
	rec, repo, store := newTestReconciler(t)

	// A legacy install stored numeric IDs; the merge must still pair them
	// with the baseline's string IDs instead of duplicating the product.
	require.NoError(t, store.Set(ctx, kv.KeyProducts,
		[]byte(`[{"id":1001,"name":"Glacier Mint","brand":"Polar Labs","price":31}]`)))

	outcome, err := rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Merged)
	require.Zero(t, outcome.Preserved)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		if p.ID == "1001" {
			require.Equal(t, 31.0, p.Price)
		}
	}
}

func TestMergeDoesNotTouchBrands(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	locals := []ProductRecord{{ID: "1001", Name: "Glacier Mint", Brand: "Polar Labs"}}
	require.NoError(t, kv.SetJSON(ctx, storeOf(repo), kv.KeyProducts, locals))
	require.NoError(t, repo.SaveBrands(ctx, []Brand{{Name: "Only Mine"}}))

	_, err := rec.Run(ctx, false)
	require.NoError(t, err)

	brands, err := repo.LoadBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, []Brand{{Name: "Only Mine"}}, brands)
}

func TestReseedClearsFlagAndRepopulates(t *testing.T) {
	ctx := context.Background()
	rec, repo, _ := newTestReconciler(t)

	require.NoError(t, repo.SetManuallyCleared(ctx, true))
	outcome, err := rec.Reseed(ctx)
	require.NoError(t, err)
	require.Equal(t, StateFresh, outcome.State)

	cleared, err := repo.ManuallyCleared(ctx)
	require.NoError(t, err)
	require.False(t, cleared)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
}

// storeOf exposes the repository's underlying store for seeding raw records.
func storeOf(repo Repository) kv.Store {
	return repo.(*repository).store
}
