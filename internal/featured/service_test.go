package featured

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

func newTestService(t *testing.T, products ...catalog.Product) (*Service, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	repo := catalog.NewRepository(store)
	require.NoError(t, repo.SaveProducts(context.Background(), products))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, repo, logger), store
}

func product(id, name string) catalog.Product {
	return catalog.Product{ID: id, Name: name, Brand: "B", Image: "x.png"}
}

func TestResolveEmptyStoreYieldsFourEmptySlots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	slots, err := svc.Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, slots, SlotCount)
	for _, slot := range slots {
		require.Empty(t, slot.ID)
		require.Nil(t, slot.Product)
	}
}

func TestResolveToleratesStaleReferences(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, product("1001", "Glacier Mint"))

	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyFeaturedProducts,
		[]string{"1001", "deleted-product", "", "1001"}))

	slots, err := svc.Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, slots, SlotCount)
	require.NotNil(t, slots[0].Product)
	require.Equal(t, "Glacier Mint", slots[0].Product.Name)
	require.Nil(t, slots[1].Product) // stale, renders empty
	require.Nil(t, slots[2].Product)
	require.NotNil(t, slots[3].Product) // duplicates allowed
}

func TestResolveTrimsHandEditedIDs(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, product("1001", "Glacier Mint"))

	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyFeaturedProducts,
		[]string{" 1001 "}))

	slots, err := svc.Resolve(ctx)
	require.NoError(t, err)
	require.NotNil(t, slots[0].Product)
}

func TestSavePadsAndTruncates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, product("1001", "A"))

	result, err := svc.Save(ctx, []string{"1001"})
	require.NoError(t, err)
	require.Equal(t, []string{"1001", "", "", ""}, result.Slots)
	require.Equal(t, 1, result.Resolved)
	require.Zero(t, result.Missing)

	result, err = svc.Save(ctx, []string{"1001", "1001", "1001", "1001", "overflow"})
	require.NoError(t, err)
	require.Len(t, result.Slots, SlotCount)
	require.Equal(t, 4, result.Resolved)
}

func TestSaveCountsMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, product("1001", "A"))

	result, err := svc.Save(ctx, []string{"1001", "ghost", ""})
	require.NoError(t, err)
	require.Equal(t, 1, result.Resolved)
	require.Equal(t, 1, result.Missing)

	// The save still went through; missing is advisory.
	slots, err := svc.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "ghost", slots[1].ID)
	require.Nil(t, slots[1].Product)
}
