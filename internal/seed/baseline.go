// Package seed exposes the embedded baseline shipped with the application:
// the factory product list, store settings, and the path-to-base64 image
// lookup. The running application reads these once at initialization and
// never writes to them.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vireo-shop/vireo/internal/catalog"
)

// DataVersion marks the schema/content generation of the embedded baseline.
// Bumping it forces a merge pass on every existing install.
const DataVersion = "2025.08.2"

//go:embed data/products.json data/settings.json data/images.json
var dataFS embed.FS

// Settings is the embedded store-settings baseline.
type Settings struct {
	StoreName    string   `json:"storeName"`
	Brands       []string `json:"brands"`
	Flavors      []string `json:"flavors"`
	SliderImages []string `json:"sliderImages"`
}

// Baseline bundles everything the reconciler consumes.
type Baseline struct {
	Products []catalog.ProductRecord
	Settings Settings
	images   map[string]string
}

var (
	loadOnce sync.Once
	loaded   *Baseline
	loadErr  error
)

// Load parses the embedded baseline once and caches it.
func Load() (*Baseline, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse()
	})
	return loaded, loadErr
}

func parse() (*Baseline, error) {
	b := &Baseline{images: map[string]string{}}

	raw, err := dataFS.ReadFile("data/products.json")
	if err != nil {
		return nil, fmt.Errorf("seed: read products: %w", err)
	}
	if err := json.Unmarshal(raw, &b.Products); err != nil {
		return nil, fmt.Errorf("seed: parse products: %w", err)
	}

	raw, err = dataFS.ReadFile("data/settings.json")
	if err != nil {
		return nil, fmt.Errorf("seed: read settings: %w", err)
	}
	if err := json.Unmarshal(raw, &b.Settings); err != nil {
		return nil, fmt.Errorf("seed: parse settings: %w", err)
	}

	raw, err = dataFS.ReadFile("data/images.json")
	if err != nil {
		return nil, fmt.Errorf("seed: read images: %w", err)
	}
	if err := json.Unmarshal(raw, &b.images); err != nil {
		return nil, fmt.Errorf("seed: parse images: %w", err)
	}
	return b, nil
}

// ImageFor resolves a conventional image path to an embedded base64 data URI.
// The second return is false when no embedded image matches.
func (b *Baseline) ImageFor(path string) (string, bool) {
	uri, ok := b.images[path]
	return uri, ok
}
