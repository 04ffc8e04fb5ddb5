// Package kv provides the record store abstraction: a flat key space of
// JSON-encoded values with whole-value overwrite semantics.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
)

// ErrKeyNotFound indicates the key has never been written or was removed.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the persistence contract every component depends on. Set always
// overwrites the full value; there is no record-level patching.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Well-known keys of the persisted record space.
const (
	KeyStoreName        = "storeName"
	KeyProducts         = "products"
	KeyBrands           = "brands"
	KeyFlavors          = "flavors"
	KeySliderImages     = "sliderImages"
	KeyFeaturedProducts = "featuredProducts"
	KeyCart             = "cart"
	KeyBrandSubBrands   = "brandSubBrands"
	KeyManuallyCleared  = "dataManuallyCleared"
	KeyDataVersion      = "app_data_version"
)

// GetJSON reads key and unmarshals it into target. An absent key or a value
// that fails to parse leaves target at its zero value and returns nil: callers
// always see a structurally valid default, never a parse error.
func GetJSON(ctx context.Context, store Store, key string, target any) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		// Malformed or type-mismatched stored values degrade to the empty
		// default. Unmarshal may have partially filled target before
		// failing, so it is reset rather than left half-decoded.
		zero(target)
		return nil
	}
	return nil
}

func zero(target any) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v.Elem().Set(reflect.Zero(v.Elem().Type()))
}

// SetJSON marshals value and overwrites key with it.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}

// Memory is an in-process Store used by tests and as a dev fallback.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the currently stored keys. Test helper.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
