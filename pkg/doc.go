// Package pkg provides the core libraries for photogrid.
//
// # Overview
//
// Photogrid arranges images into a single captioned grid: cells are filled
// left to right and top to bottom, every image is stretched to the cell size,
// and a band below each cell carries up to two centered lines of caption.
//
// # Architecture
//
// The typical data flow:
//
//	uploaded files / image paths
//	         ↓
//	    session package (web UI state, one per visitor)
//	         ↓
//	    pipeline package (defaults, validation, caching, PNG encoding)
//	         ↓
//	    grid package (layout, placement, caption wrap and drawing)
//	         ↓
//	    PNG
//
// # Quick Start
//
//	cells := []grid.Cell{
//	    {Image: beach, Caption: "Beach day"},
//	    {Image: hike, Caption: "Summit at dawn"},
//	}
//	img, err := grid.Compose(cells, grid.DefaultLayout())
//
// # Main Packages
//
//   - grid: the compositor, word wrap and text measurement
//   - fonts: caption font resolution with a built-in fallback
//   - pipeline: options, cached runner, PNG encoding
//   - cache: content-addressed result cache (null, file, redis)
//   - session: per-visitor upload state (memory, file, redis)
//   - errors: coded errors and user-facing messages
//   - observability: hooks for metrics and tracing
//   - buildinfo: version information injected at build time
package pkg
