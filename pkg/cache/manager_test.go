package cache

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips the test when
// none is reachable. The integration suite covers the same paths against a
// container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func pageKey(page string) CacheKey {
	return CacheKey{
		Endpoint:    "/api/character/",
		QueryParams: url.Values{"page": []string{page}},
	}
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func withClock(m *Manager) *clock {
	c := &clock{t: time.Now()}
	m.SetClock(c.now)
	return c
}

func exerciseManager(t *testing.T, m *Manager) {
	ctx := context.Background()
	c := withClock(m)

	if _, _, err := m.Lookup(ctx, pageKey("1")); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("empty cache: expected ErrCacheMiss, got %v", err)
	}

	resp := okResponse(http.Header{
		"Etag":          []string{`W/"page-1"`},
		"Cache-Control": []string{"max-age=300"},
	})
	if err := m.StoreResponse(ctx, pageKey("1"), resp); err != nil {
		t.Fatalf("StoreResponse failed: %v", err)
	}

	e, fresh, err := m.Lookup(ctx, pageKey("1"))
	if err != nil || !fresh {
		t.Fatalf("Lookup = fresh %v, err %v; want fresh entry", fresh, err)
	}
	if string(e.Body) != samplePage || e.ETag != `W/"page-1"` {
		t.Errorf("unexpected entry: etag=%q body=%q", e.ETag, e.Body)
	}

	if _, _, err := m.Lookup(ctx, pageKey("2")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("other page: expected ErrCacheMiss, got %v", err)
	}

	c.advance(10 * time.Minute)
	e, fresh, err = m.Lookup(ctx, pageKey("1"))
	if err != nil || fresh {
		t.Fatalf("after expiry: fresh %v, err %v; want stale entry", fresh, err)
	}

	if err := m.Revalidated(ctx, pageKey("1"), e, http.Header{"Cache-Control": []string{"max-age=60"}}); err != nil {
		t.Fatalf("Revalidated failed: %v", err)
	}
	e, fresh, err = m.Lookup(ctx, pageKey("1"))
	if err != nil || !fresh {
		t.Fatalf("after 304: fresh %v, err %v; want fresh entry", fresh, err)
	}
	if want := c.now().Add(time.Minute); !e.FreshUntil.Equal(want) {
		t.Errorf("FreshUntil = %v, want %v", e.FreshUntil, want)
	}

	if err := m.Delete(ctx, pageKey("1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := m.Lookup(ctx, pageKey("1")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("after Delete: expected ErrCacheMiss, got %v", err)
	}

	if err := m.Revalidated(ctx, pageKey("1"), nil, http.Header{}); err == nil {
		t.Error("Revalidated with nil entry should return error")
	}
}

func TestMemoryManager(t *testing.T) {
	exerciseManager(t, NewMemoryManager())
}

func TestRedisManager(t *testing.T) {
	exerciseManager(t, NewManager(setupTestRedis(t)))
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestMemoryManager_Retention(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()
	m.SetStaleFor(30 * time.Minute)
	c := withClock(m)

	plain := okResponse(http.Header{"Cache-Control": []string{"max-age=60"}})
	if err := m.StoreResponse(ctx, pageKey("1"), plain); err != nil {
		t.Fatal(err)
	}
	validated := okResponse(http.Header{"Cache-Control": []string{"max-age=60"}, "Etag": []string{`W/"page-2"`}})
	if err := m.StoreResponse(ctx, pageKey("2"), validated); err != nil {
		t.Fatal(err)
	}

	c.advance(2 * time.Minute)
	if _, _, err := m.Lookup(ctx, pageKey("1")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry without validator: expected ErrCacheMiss, got %v", err)
	}
	if _, fresh, err := m.Lookup(ctx, pageKey("2")); err != nil || fresh {
		t.Errorf("expired entry with etag: fresh %v, err %v; want stale entry", fresh, err)
	}

	c.advance(30 * time.Minute)
	if _, _, err := m.Lookup(ctx, pageKey("2")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("past the stale window: expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_SkipsUncacheable(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	for key, header := range map[string]http.Header{
		"no-store":                   {"Cache-Control": []string{"no-store"}},
		"no-cache without validator": {"Cache-Control": []string{"no-cache"}},
	} {
		if err := m.StoreResponse(ctx, pageKey(key), okResponse(header)); err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if _, _, err := m.Lookup(ctx, pageKey(key)); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("%s: expected ErrCacheMiss, got %v", key, err)
		}
	}
}

func TestManager_RevalidatedNoStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()
	resp := okResponse(http.Header{"Etag": []string{`W/"page-3"`}})
	if err := m.StoreResponse(ctx, pageKey("3"), resp); err != nil {
		t.Fatal(err)
	}
	e, _, err := m.Lookup(ctx, pageKey("3"))
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Revalidated(ctx, pageKey("3"), e, http.Header{"Cache-Control": []string{"no-store"}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Lookup(ctx, pageKey("3")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected entry dropped after no-store 304, got %v", err)
	}
}
