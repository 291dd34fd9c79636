// Package observability lets a binary watch photogrid without the libraries
// depending on a metrics backend.
//
// pkg/pipeline and internal/server report events to whatever hooks are
// registered here; by default those are no-ops. A binary installs its own
// implementations once at startup, for example the [Counters] that
// `photogrid serve` exposes at /stats:
//
//	stats := observability.NewCounters()
//	observability.Install(stats)
package observability

import (
	"context"
	"sync"
	"time"
)

// ComposeHooks observes grid composition.
type ComposeHooks interface {
	OnComposeStart(ctx context.Context, cells, columns int)
	OnComposeComplete(ctx context.Context, cells int, duration time.Duration, err error)
	// OnEncode reports an encoded grid's format and size in bytes.
	OnEncode(ctx context.Context, format string, size int, duration time.Duration)
}

// CacheHooks observes result cache traffic. keyType is "grid" or "preview".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// RequestHooks observes the web UI. route is the matched route pattern,
// never the raw path.
type RequestHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
	OnPanic(ctx context.Context, method, route string, recovered any)
}

type NoopComposeHooks struct{}

func (NoopComposeHooks) OnComposeStart(context.Context, int, int)                      {}
func (NoopComposeHooks) OnComposeComplete(context.Context, int, time.Duration, error) {}
func (NoopComposeHooks) OnEncode(context.Context, string, int, time.Duration)         {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopRequestHooks struct{}

func (NoopRequestHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
func (NoopRequestHooks) OnPanic(context.Context, string, string, any)                 {}

var registry = struct {
	sync.RWMutex
	compose ComposeHooks
	cache   CacheHooks
	request RequestHooks
}{
	compose: NoopComposeHooks{},
	cache:   NoopCacheHooks{},
	request: NoopRequestHooks{},
}

// SetComposeHooks replaces the compose hooks. nil is ignored.
func SetComposeHooks(h ComposeHooks) {
	registry.Lock()
	defer registry.Unlock()
	if h != nil {
		registry.compose = h
	}
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	registry.Lock()
	defer registry.Unlock()
	if h != nil {
		registry.cache = h
	}
}

// SetRequestHooks replaces the request hooks. nil is ignored.
func SetRequestHooks(h RequestHooks) {
	registry.Lock()
	defer registry.Unlock()
	if h != nil {
		registry.request = h
	}
}

// Install registers h for every hook kind it implements.
func Install(h any) {
	if c, ok := h.(ComposeHooks); ok {
		SetComposeHooks(c)
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
	}
	if r, ok := h.(RequestHooks); ok {
		SetRequestHooks(r)
	}
}

func Compose() ComposeHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.compose
}

func Cache() CacheHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.cache
}

func Request() RequestHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.request
}

// Reset restores the no-op hooks.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.compose = NoopComposeHooks{}
	registry.cache = NoopCacheHooks{}
	registry.request = NoopRequestHooks{}
}
