package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "currentPage")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "currentPage", "3"))
	require.NoError(t, s.Set(ctx, "favoriteCharacters", "[1,2]"))

	v, err := s.Get(ctx, "currentPage")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	require.NoError(t, s.Set(ctx, "currentPage", "4"))
	v, err = s.Get(ctx, "currentPage")
	require.NoError(t, err)
	assert.Equal(t, "4", v, "set overwrites")

	require.NoError(t, s.Delete(ctx, "currentPage", "missing"))
	_, err = s.Get(ctx, "currentPage")
	require.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, "favoriteCharacters")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", v)

	require.NoError(t, s.Delete(ctx))
	require.NoError(t, s.Clear(ctx))
	_, err = s.Get(ctx, "favoriteCharacters")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)
	assert.Equal(t, 0, m.Len())
	require.NoError(t, m.Close())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "currentPage", "7"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(ctx, "currentPage")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	require.Error(t, err)
}

// setupTestRedis connects to a local Redis or skips.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foreign:key", "keep", 0).Err())
	t.Cleanup(func() { client.Del(ctx, "foreign:key") })

	s := NewRedis(client, "characters:test:")
	exerciseStore(t, s)

	v, err := client.Get(ctx, "foreign:key").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", v, "clear must only touch prefixed keys")
}

func TestNewRedis_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewRedis(client, "")
	assert.Equal(t, DefaultRedisPrefix, s.prefix)
	assert.Panics(t, func() { NewRedis(nil, "") })
}
