//go:build integration

package integration

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/Sternrassler/character-browser/internal/testutil"
	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/Sternrassler/character-browser/pkg/kv"
	"github.com/Sternrassler/character-browser/pkg/session"
	"github.com/Sternrassler/character-browser/pkg/view"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, rdb.Ping(ctx).Err())

	t.Cleanup(func() {
		_ = rdb.Close()
		_ = container.Terminate(ctx)
	})
	return rdb
}

func newClient(t *testing.T, rdb *redis.Client, baseURL string) *client.Client {
	t.Helper()
	cfg := client.DefaultConfig(rdb, "character-browser-integration/1.0")
	cfg.BaseURL = baseURL
	cfg.Retry = client.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestPageCache_SharedAndRevalidated covers a fresh hit served by Redis to
// a second client and the conditional request once the entry is stale.
func TestPageCache_SharedAndRevalidated(t *testing.T) {
	rdb := setupRedis(t)
	mock := testutil.NewMockAPI(45, 20)
	defer mock.Close()
	ctx := context.Background()

	first := newClient(t, rdb, mock.BaseURL())
	page, err := first.FetchPage(ctx, 2)
	require.NoError(t, err)

	key := cache.CacheKey{Endpoint: "/api/character/", QueryParams: url.Values{"page": {"2"}}}
	entry, fresh, err := first.GetCache().Lookup(ctx, key)
	require.NoError(t, err, "page cached under %s", key)
	assert.True(t, fresh)
	assert.Equal(t, `W/"page-2"`, entry.ETag)

	second := newClient(t, rdb, mock.BaseURL())
	cached, err := second.FetchPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, page.IDs(), cached.IDs())
	assert.Equal(t, 1, mock.GetRequestCount(), "second client served from Redis")

	later := time.Now().Add(cache.DefaultTTL + time.Minute)
	second.GetCache().SetClock(func() time.Time { return later })
	revalidated, err := second.FetchPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.GetConditionalCount())
	assert.Equal(t, page.IDs(), revalidated.IDs())
	assert.Equal(t, 3, revalidated.TotalPages())
}

// TestRateLimit_SharedAcrossClients checks that a block recorded by one
// client stops another client on the same Redis.
func TestRateLimit_SharedAcrossClients(t *testing.T) {
	rdb := setupRedis(t)
	mock := testutil.NewMockAPI(20, 20)
	defer mock.Close()
	mock.SetResponse("/api/character/", testutil.NewRateLimitResponse(60))

	ctx := context.Background()
	a := newClient(t, rdb, mock.BaseURL())
	_, err := a.FetchPage(ctx, 1)
	require.ErrorIs(t, err, client.ErrRetryExhausted)

	requests := mock.GetRequestCount()
	b := newClient(t, rdb, mock.BaseURL())
	_, err = b.FetchPage(ctx, 1)
	require.True(t, errors.Is(err, client.ErrRateLimited), "got %v", err)
	assert.Equal(t, requests, mock.GetRequestCount(), "blocked request reached the API")

	state, err := b.RateLimiter().GetState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsBlocked())
}

// TestRedisStore_Session round-trips the session through the Redis medium.
func TestRedisStore_Session(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "unrelated", "1", 0).Err())

	store := kv.NewRedis(rdb, kv.DefaultRedisPrefix)
	p := session.NewPersister(store)

	st := session.NewState()
	st.Nav.SetTotal(42)
	st.Nav.GoTo(12)
	st.Favorites.Toggle(8)
	st.Favorites.Toggle(3)
	require.NoError(t, p.Save(ctx, st))

	raw, err := rdb.Get(ctx, kv.DefaultRedisPrefix+session.KeyFavorites).Result()
	require.NoError(t, err)
	assert.Equal(t, "[8,3]", raw)

	loaded := session.NewState()
	require.NoError(t, p.Load(ctx, loaded))
	assert.Equal(t, 12, loaded.Nav.Current)
	assert.Equal(t, []int{8, 3}, loaded.Favorites.IDs())

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, session.KeyCurrentPage)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	assert.Equal(t, "1", rdb.Get(ctx, "unrelated").Val())
}

// TestBrowser_RedisStack runs the view on the full Redis-backed stack.
func TestBrowser_RedisStack(t *testing.T) {
	rdb := setupRedis(t)
	mock := testutil.NewMockAPI(100, 20)
	defer mock.Close()
	ctx := context.Background()

	open := func() *view.Browser {
		b, err := view.New(view.Config{
			Fetcher: newClient(t, rdb, mock.BaseURL()),
			Store:   kv.NewRedis(rdb, ""),
		})
		require.NoError(t, err)
		require.NoError(t, b.Load(ctx))
		return b
	}

	b := open()
	require.NoError(t, b.Dispatch(ctx, events.Event{Name: events.PageLast}))
	require.NoError(t, b.Dispatch(ctx, events.Event{Name: events.ToggleFavorite, Value: "99"}))
	require.NoError(t, b.Unload(ctx))

	reopened := open()
	assert.Equal(t, 5, reopened.State().Nav.Current)
	assert.True(t, reopened.State().Favorites.Contains(99))
	assert.Equal(t, 1, mock.GetPageRequests(5), "reopened view served page 5 from Redis")

	require.NoError(t, reopened.Dispatch(ctx, events.Event{Name: events.ShowFavorites}))
	fav := events.Find(reopened.Container(view.IDFavorites), events.ToggleFavorite, "99")
	require.NotNil(t, fav, "favorite card rendered from the session cache")
}
