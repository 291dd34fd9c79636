// Package grid composes captioned image grids.
//
// # Overview
//
// [Compose] takes an ordered list of [Cell] values (encoded image bytes plus a
// caption) and a [Layout], and returns one RGB raster. Cells are placed
// row-major: cell i lands in row i/Columns, column i%Columns. Every cell
// occupies a CellWidth x CellHeight image area followed by a caption band of
// CaptionHeight pixels.
//
//	img, err := grid.Compose(cells, grid.Layout{
//	    Columns:       2,
//	    CellWidth:     300,
//	    CellHeight:    300,
//	    CaptionHeight: 70,
//	    Background:    grid.White,
//	})
//
// An empty cell list yields a nil image and a nil error.
//
// # Degradation
//
// Composition never fails because of a single cell:
//
//   - Image bytes that do not decode leave the cell background visible.
//   - Captions are measured by glyph bounds, then by advance width, then by a
//     fixed per-rune estimate (see [Measure]).
//   - When no caption font resolves, a built-in bitmap face is used.
//
// Only an invalid [Layout] (no columns, empty cells) is reported as an error.
//
// # Captions
//
// Captions are trimmed, wrapped at [WrapWidth] runes with [Wrap], and cut to
// the first [MaxCaptionLines] lines without any overflow marker. Each line is
// centered in the cell and drawn in black.
package grid
