// Package cache stores composed grids keyed by their inputs.
//
// A grid is fully determined by its cell bytes, captions and layout
// options, so the PNG produced for one set of inputs can be served again
// without recomposing. [Keyer] derives those content-addressed keys;
// [Cache] backends store the bytes:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entries under a local directory (CLI)
//   - [RedisCache]: shared cache for `photogrid serve` replicas
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per artifact kind.
const (
	TTLGrid    = 24 * time.Hour
	TTLPreview = time.Hour
)

// Cache is a byte store with per-entry expiry.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GridKeyOpts are the layout inputs that change a composed grid.
type GridKeyOpts struct {
	Columns       int     `json:"columns"`
	CellWidth     int     `json:"cell_width"`
	CellHeight    int     `json:"cell_height"`
	CaptionHeight int     `json:"caption_height"`
	Background    string  `json:"background"`
	Font          string  `json:"font"` // resolved font file, or the builtin face
	FontSize      float64 `json:"font_size"`
}

// CellKey identifies one cell by the hash of its bytes and its caption.
type CellKey struct {
	ImageHash string `json:"image"`
	Caption   string `json:"caption"`
}

// Keyer generates cache keys.
type Keyer interface {
	GridKey(cells []CellKey, opts GridKeyOpts) string
	PreviewKey(imageHash string, size int) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GridKey returns "grid:<sha256>" over the ordered cells and options.
// Reordering cells changes the key.
func (DefaultKeyer) GridKey(cells []CellKey, opts GridKeyOpts) string {
	return hashKey("grid", cells, opts)
}

// PreviewKey returns "preview:<sha256>" for a thumbnail of one image.
func (DefaultKeyer) PreviewKey(imageHash string, size int) string {
	return hashKey("preview", imageHash, size)
}
