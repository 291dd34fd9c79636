// Package pipeline turns uploaded cells into an encoded grid.
//
// This package wraps [grid.Compose] with what both the CLI and the web UI
// need around it: option defaults and validation, caption font resolution,
// PNG encoding, result caching and observability hooks. By centralizing
// this, `photogrid compose` and `photogrid serve` produce identical bytes
// for identical inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Compose(ctx, cells, pipeline.Options{Columns: 3})
//	if err != nil {
//	    return err
//	}
//	if result == nil {
//	    // no cells: nothing to show or download
//	}
//	os.WriteFile(pipeline.DownloadName, result.PNG, 0o644)
package pipeline

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/fonts"
	"github.com/matzehuels/photogrid/pkg/grid"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultColumns is the grid width in cells.
	DefaultColumns = 4

	// DefaultCellSize is the width and height of each image cell in pixels.
	DefaultCellSize = 300

	// DefaultCaptionHeight is the caption band below each cell in pixels.
	DefaultCaptionHeight = 70

	// DefaultBackground is the canvas color.
	DefaultBackground = "#ffffff"

	// PreviewSize is the edge of the square upload thumbnails.
	PreviewSize = 100
)

// Download metadata for composed grids.
const (
	DownloadName = "grid_custom.png"
	MIMEType     = "image/png"
)

// =============================================================================
// Options - Composition Configuration
// =============================================================================

// Options contains all configuration for one composition.
// Zero values select the defaults above.
type Options struct {
	Columns       int      `json:"columns,omitempty" toml:"columns"`
	CellWidth     int      `json:"cell_width,omitempty" toml:"cell_width"`
	CellHeight    int      `json:"cell_height,omitempty" toml:"cell_height"`
	CaptionHeight int      `json:"caption_height,omitempty" toml:"caption_height"`
	Background    string   `json:"background,omitempty" toml:"background"`
	FontNames     []string `json:"font_names,omitempty" toml:"fonts"`
	FontDirs      []string `json:"font_dirs,omitempty" toml:"font_dirs"`
	FontSize      float64  `json:"font_size,omitempty" toml:"font_size"`

	// Logger receives debug output from composition. Runner.Compose
	// substitutes its own logger when nil.
	Logger *log.Logger `json:"-" toml:"-"`

	background color.RGBA
	validated  bool
}

// Result contains the output of one composition.
type Result struct {
	PNG    []byte
	Width  int
	Height int
	Rows   int
	Cells  int

	// Skipped lists the cells whose image could not be decoded.
	Skipped []int

	CacheHit bool
	Stats    Stats
}

// Stats contains composition timing.
type Stats struct {
	ComposeTime time.Duration
	EncodeTime  time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every field.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if err := errors.ValidateColumns(o.Columns, 0); err != nil {
		return err
	}
	if err := errors.ValidateCellSize(o.CellWidth, o.CellHeight, o.CaptionHeight); err != nil {
		return err
	}
	if err := (grid.Layout{
		Columns: o.Columns, CellWidth: o.CellWidth, CellHeight: o.CellHeight, CaptionHeight: o.CaptionHeight,
	}).Validate(); err != nil {
		return err
	}
	bg, err := ParseColor(o.Background)
	if err != nil {
		return err
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size cannot be negative, got %v", o.FontSize)
	}

	o.background = bg
	o.validated = true
	return nil
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.CellWidth == 0 {
		o.CellWidth = DefaultCellSize
	}
	if o.CellHeight == 0 {
		o.CellHeight = DefaultCellSize
	}
	if o.CaptionHeight == 0 {
		o.CaptionHeight = DefaultCaptionHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.FontSize == 0 {
		o.FontSize = fonts.DefaultSize
	}
	if len(o.FontNames) == 0 {
		o.FontNames = fonts.DefaultNames
	}
}

// Layout returns the grid geometry. Call ValidateAndSetDefaults first.
func (o *Options) Layout() grid.Layout {
	return grid.Layout{
		Columns:       o.Columns,
		CellWidth:     o.CellWidth,
		CellHeight:    o.CellHeight,
		CaptionHeight: o.CaptionHeight,
		Background:    o.background,
	}
}

// FontOptions returns the caption font search settings.
func (o *Options) FontOptions() fonts.Options {
	return fonts.Options{Names: o.FontNames, Dirs: o.FontDirs, Size: o.FontSize}
}

// GridKeyOpts returns cache key options for the composed grid drawn with
// face. The key names the font file actually loaded (or the builtin), since
// the same names can resolve differently once font directories change.
func (o *Options) GridKeyOpts(face fonts.Face) cache.GridKeyOpts {
	font := face.Path
	if face.Builtin {
		font = fonts.BuiltinName
	}
	return cache.GridKeyOpts{
		Columns:       o.Columns,
		CellWidth:     o.CellWidth,
		CellHeight:    o.CellHeight,
		CaptionHeight: o.CaptionHeight,
		Background:    strings.ToLower(o.Background),
		Font:          font,
		FontSize:      o.FontSize,
	}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ParseColor parses "#rgb" or "#rrggbb" (the '#' is optional) into an
// opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidColor, "invalid color %q (want #rgb or #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// FormatColor renders c as "#rrggbb".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
