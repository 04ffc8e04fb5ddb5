package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

func newTestService(t *testing.T, defaults Defaults) (*Service, *kv.Memory, catalog.Repository) {
	t.Helper()
	store := kv.NewMemory()
	repo := catalog.NewRepository(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, repo, defaults, logger), store, repo
}

func TestStoreNameFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Defaults{StoreName: "Vireo Vapor Co."})

	name, err := svc.StoreName(ctx)
	require.NoError(t, err)
	require.Equal(t, "Vireo Vapor Co.", name)
}

func TestSetStoreName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Defaults{StoreName: "Default"})

	require.ErrorIs(t, svc.SetStoreName(ctx, "  "), httpx.ErrValidation)

	require.NoError(t, svc.SetStoreName(ctx, " Cloud Nine "))
	name, err := svc.StoreName(ctx)
	require.NoError(t, err)
	require.Equal(t, "Cloud Nine", name)
}

func TestSliderImagesMergePerSlot(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, Defaults{
		SliderImages: []string{"base0.png", "base1.png", "base2.png", "", ""},
	})

	// No local data: the baseline shows through slot by slot.
	merged, err := svc.SliderImages(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"base0.png", "base1.png", "base2.png", "", ""}, merged)

	// A local value wins only for its own slot; empty local slots still
	// fall back.
	require.NoError(t, kv.SetJSON(ctx, store, kv.KeySliderImages,
		[]string{"local0.png", "", "local2.png"}))
	merged, err = svc.SliderImages(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"local0.png", "base1.png", "local2.png", "", ""}, merged)
}

func TestSaveSliderImagesPads(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Defaults{})

	slots, err := svc.SaveSliderImages(ctx, []string{"a.png", "b.png"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.png", "", "", ""}, slots)

	slots, err = svc.SaveSliderImages(ctx, []string{"1", "2", "3", "4", "5", "overflow"})
	require.NoError(t, err)
	require.Len(t, slots, SliderSlots)
	require.Equal(t, "5", slots[4])
}

func TestClearAllRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, Defaults{})
	require.NoError(t, store.Set(ctx, kv.KeyProducts, []byte(`[]`)))

	require.ErrorIs(t, svc.ClearAll(ctx, nil), httpx.ErrConfirmationRequired)
	require.ErrorIs(t, svc.ClearAll(ctx, func() bool { return false }), httpx.ErrConfirmationRequired)

	// Declined: nothing removed.
	_, err := store.Get(ctx, kv.KeyProducts)
	require.NoError(t, err)
}

func TestClearAllWipesAndRaisesFlag(t *testing.T) {
	ctx := context.Background()
	svc, store, repo := newTestService(t, Defaults{})

	for _, key := range []string{kv.KeyProducts, kv.KeyBrands, kv.KeyCart, kv.KeyStoreName} {
		require.NoError(t, store.Set(ctx, key, []byte(`"x"`)))
	}

	require.NoError(t, svc.ClearAll(ctx, func() bool { return true }))

	// Only the cleared flag remains.
	require.Equal(t, []string{kv.KeyManuallyCleared}, store.Keys())

	cleared, err := repo.ManuallyCleared(ctx)
	require.NoError(t, err)
	require.True(t, cleared)
}
