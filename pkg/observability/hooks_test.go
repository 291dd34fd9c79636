package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopComposeHooks{}
	p.OnComposeStart(ctx, 4, 2)
	p.OnComposeComplete(ctx, 4, time.Second, nil)
	p.OnEncode(ctx, "png", 1024, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "grid")
	c.OnCacheMiss(ctx, "grid")
	c.OnCacheSet(ctx, "preview", 1024)

	r := NoopRequestHooks{}
	r.OnRequest(ctx, "POST", "/compose", 303, time.Second)
	r.OnPanic(ctx, "GET", "/", "boom")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Compose().(NoopComposeHooks); !ok {
		t.Error("Compose() should return NoopComposeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Request().(NoopRequestHooks); !ok {
		t.Error("Request() should return NoopRequestHooks by default")
	}

	customCompose := &testComposeHooks{}
	SetComposeHooks(customCompose)
	if Compose() != customCompose {
		t.Error("SetComposeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customRequest := &testRequestHooks{}
	SetRequestHooks(customRequest)
	if Request() != customRequest {
		t.Error("SetRequestHooks should set custom hooks")
	}

	Reset()
	if _, ok := Compose().(NoopComposeHooks); !ok {
		t.Error("Reset() should restore NoopComposeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testComposeHooks{}
	SetComposeHooks(custom)
	SetComposeHooks(nil)

	if Compose() != custom {
		t.Error("SetComposeHooks(nil) should be ignored")
	}

	Reset()
}

type testComposeHooks struct{ NoopComposeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testRequestHooks struct{ NoopRequestHooks }

func TestInstallCounters(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()
	c := NewCounters()
	Install(c)

	Compose().OnComposeStart(ctx, 3, 2)
	Compose().OnComposeComplete(ctx, 3, 40*time.Millisecond, nil)
	Compose().OnComposeComplete(ctx, 1, time.Millisecond, errors.New("bad layout"))
	Compose().OnEncode(ctx, "png", 2048, time.Millisecond)
	Cache().OnCacheMiss(ctx, "grid")
	Cache().OnCacheHit(ctx, "grid")
	Cache().OnCacheHit(ctx, "preview")
	Request().OnRequest(ctx, "GET", "/", 200, time.Millisecond)
	Request().OnRequest(ctx, "POST", "/compose", 500, time.Millisecond)
	Request().OnPanic(ctx, "POST", "/compose", "boom")

	got := c.Snapshot()
	want := Snapshot{
		Uptime:         got.Uptime,
		Grids:          1,
		FailedGrids:    1,
		Cells:          3,
		AvgComposeMS:   40,
		EncodedBytes:   2048,
		CacheHits:      2,
		CacheMisses:    1,
		Requests:       2,
		ServerErrors:   1,
		RecoveredPanic: 1,
	}
	if got != want {
		t.Errorf("Snapshot() = %+v\nwant %+v", got, want)
	}
}
