package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one redis without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "photogrid:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GridKey generates a prefixed key for composed grids.
func (k *ScopedKeyer) GridKey(cells []CellKey, opts GridKeyOpts) string {
	return k.prefix + k.inner.GridKey(cells, opts)
}

// PreviewKey generates a prefixed key for upload thumbnails.
func (k *ScopedKeyer) PreviewKey(imageHash string, size int) string {
	return k.prefix + k.inner.PreviewKey(imageHash, size)
}
