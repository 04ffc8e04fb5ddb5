package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, KeyProducts)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, KeyProducts, []byte(`[{"id":"1"}]`)))
	raw, err := store.Get(ctx, KeyProducts)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1"}]`, string(raw))

	require.NoError(t, store.Remove(ctx, KeyProducts))
	_, err = store.Get(ctx, KeyProducts)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	value := []byte(`"original"`)
	require.NoError(t, store.Set(ctx, KeyStoreName, value))
	value[1] = 'X'

	raw, err := store.Get(ctx, KeyStoreName)
	require.NoError(t, err)
	require.Equal(t, `"original"`, string(raw))

	// Mutating the returned slice must not change the stored copy either.
	raw[1] = 'Y'
	again, err := store.Get(ctx, KeyStoreName)
	require.NoError(t, err)
	require.Equal(t, `"original"`, string(again))
}

func TestGetJSONDegradesToZeroValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var missing []string
	require.NoError(t, GetJSON(ctx, store, KeyFlavors, &missing))
	require.Nil(t, missing)

	require.NoError(t, store.Set(ctx, KeyFlavors, []byte(`{not json`)))
	var malformed []string
	require.NoError(t, GetJSON(ctx, store, KeyFlavors, &malformed))
	require.Nil(t, malformed)

	require.NoError(t, store.Set(ctx, KeyFlavors, nil))
	var empty []string
	require.NoError(t, GetJSON(ctx, store, KeyFlavors, &empty))
	require.Nil(t, empty)
}

func TestGetJSONTypeMismatchLeavesNoPartialDecode(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	// Valid JSON whose elements mismatch the target type: unmarshal fills
	// the matching elements before failing, and that partial result must
	// not leak out.
	require.NoError(t, store.Set(ctx, KeyFlavors, []byte(`["Mint", 5, "Mango"]`)))
	var flavors []string
	require.NoError(t, GetJSON(ctx, store, KeyFlavors, &flavors))
	require.Nil(t, flavors)

	require.NoError(t, store.Set(ctx, KeyStoreName, []byte(`{"nested":"object"}`)))
	var name string
	require.NoError(t, GetJSON(ctx, store, KeyStoreName, &name))
	require.Empty(t, name)

	// A pre-populated target degrades to empty too, not to its old value.
	require.NoError(t, store.Set(ctx, KeyCart, []byte(`"not a map"`)))
	stale := map[string]int{"left": 1}
	require.NoError(t, GetJSON(ctx, store, KeyCart, &stale))
	require.Empty(t, stale)
}

func TestSetJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, SetJSON(ctx, store, KeyCart, in))

	var out map[string]int
	require.NoError(t, GetJSON(ctx, store, KeyCart, &out))
	require.Equal(t, in, out)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client, "test"), srv
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, srv := newRedisStore(t)

	_, err := store.Get(ctx, KeyBrands)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, KeyBrands, []byte(`["Polar Labs"]`)))

	// Values live under the configured prefix.
	require.True(t, srv.Exists("test:"+KeyBrands))

	raw, err := store.Get(ctx, KeyBrands)
	require.NoError(t, err)
	require.JSONEq(t, `["Polar Labs"]`, string(raw))

	require.NoError(t, store.Remove(ctx, KeyBrands))
	_, err = store.Get(ctx, KeyBrands)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStoreNoPrefix(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisWithClient(client, "")

	require.NoError(t, store.Set(ctx, KeyStoreName, []byte(`"Vireo"`)))
	require.True(t, srv.Exists(KeyStoreName))
}
