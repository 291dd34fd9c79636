package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/fonts"
	"github.com/matzehuels/photogrid/pkg/grid"
	"github.com/matzehuels/photogrid/pkg/observability"
)

// Runner encapsulates composition with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedGrid is the cache entry for a composed grid.
type cachedGrid struct {
	PNG     []byte `json:"png"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Rows    int    `json:"rows"`
	Skipped []int  `json:"skipped,omitempty"`
}

// Compose lays out cells and encodes the grid as PNG.
// It returns nil, nil when there are no cells.
func (r *Runner) Compose(ctx context.Context, cells []grid.Cell, opts Options) (*Result, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	face, skippedFonts := fonts.Resolve(opts.FontOptions())
	defer face.Close()
	for _, f := range skippedFonts {
		opts.Logger.Debug("caption font unavailable", "font", f.Name, "err", f.Err)
	}
	opts.Logger.Debug("caption font", "font", face.Name, "path", face.Path)

	key := r.Keyer.GridKey(cellKeys(cells), opts.GridKeyOpts(face))
	if entry, ok := r.cachedGrid(ctx, key); ok {
		r.Logger.Debug("grid cache hit", "cells", len(cells))
		return &Result{
			PNG:      entry.PNG,
			Width:    entry.Width,
			Height:   entry.Height,
			Rows:     entry.Rows,
			Cells:    len(cells),
			Skipped:  entry.Skipped,
			CacheHit: true,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Compose()
	hooks.OnComposeStart(ctx, len(cells), opts.Columns)

	result := &Result{Cells: len(cells)}
	start := time.Now()
	img, err := grid.Compose(cells, opts.Layout(),
		grid.WithFace(face.Face),
		grid.WithLogger(opts.Logger),
		grid.WithSkipped(func(i int, err error) {
			result.Skipped = append(result.Skipped, i)
		}),
	)
	result.Stats.ComposeTime = time.Since(start)
	hooks.OnComposeComplete(ctx, len(cells), result.Stats.ComposeTime, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	result.Stats.EncodeTime = time.Since(start)
	hooks.OnEncode(ctx, "png", len(data), result.Stats.EncodeTime)

	result.PNG = data
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	result.Rows = opts.Layout().Rows(len(cells))

	r.Logger.Debug("composed grid",
		"cells", len(cells),
		"size", len(data),
		"compose", result.Stats.ComposeTime,
		"encode", result.Stats.EncodeTime)

	r.storeGrid(ctx, key, cachedGrid{
		PNG:     result.PNG,
		Width:   result.Width,
		Height:  result.Height,
		Rows:    result.Rows,
		Skipped: result.Skipped,
	})
	return result, nil
}

// Preview returns a PreviewSize x PreviewSize PNG thumbnail of an upload.
// Undecodable data yields an UNSUPPORTED_TYPE error.
func (r *Runner) Preview(ctx context.Context, data []byte) ([]byte, error) {
	key := r.Keyer.PreviewKey(cache.Hash(data), PreviewSize)
	if cached, ok := r.get(ctx, key, "preview"); ok {
		return cached, nil
	}

	rgb, err := grid.DecodeRGB(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedType, err, "cannot preview image")
	}
	thumb, err := EncodePNG(imaging.Resize(rgb, PreviewSize, PreviewSize, imaging.CatmullRom))
	if err != nil {
		return nil, err
	}

	r.set(ctx, key, "preview", thumb, cache.TTLPreview)
	return thumb, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode png")
	}
	return buf.Bytes(), nil
}

func cellKeys(cells []grid.Cell) []cache.CellKey {
	keys := make([]cache.CellKey, len(cells))
	for i, c := range cells {
		keys[i].Caption = c.Caption
		if len(c.Image) > 0 {
			keys[i].ImageHash = cache.Hash(c.Image)
		}
	}
	return keys
}

func (r *Runner) cachedGrid(ctx context.Context, key string) (cachedGrid, bool) {
	var entry cachedGrid
	data, ok := r.get(ctx, key, "grid")
	if !ok {
		return entry, false
	}
	err := json.Unmarshal(data, &entry)
	if err == nil && len(entry.PNG) == 0 {
		err = cache.ErrCorrupt
	}
	if err != nil {
		r.Logger.Warn("discarding grid cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		return entry, false
	}
	return entry, true
}

func (r *Runner) storeGrid(ctx context.Context, key string, entry cachedGrid) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	r.set(ctx, key, "grid", data, cache.TTLGrid)
}

// get reads through the cache. Backend errors are logged and read as a miss:
// a failing cache must never fail a composition.
func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
