package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStaleFor is how long an expired entry with a validator is kept for
// revalidation.
const DefaultStaleFor = time.Hour

var (
	// ErrCacheMiss is returned by Lookup when nothing is stored under a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry is returned for stored data that does not decode.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager keeps API responses in Redis, or in process when built with
// NewMemoryManager.
type Manager struct {
	redis    *redis.Client
	backend  string
	staleFor time.Duration
	now      func() time.Time

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	entry *Entry
	until time.Time
}

// NewManager returns a Redis-backed manager shared by every client on the
// same Redis.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis:    redisClient,
		backend:  "redis",
		staleFor: DefaultStaleFor,
		now:      time.Now,
	}
}

// NewMemoryManager returns a manager private to this process.
func NewMemoryManager() *Manager {
	return &Manager{
		backend:  "memory",
		staleFor: DefaultStaleFor,
		now:      time.Now,
		local:    make(map[string]localEntry),
	}
}

// SetClock replaces the time source used for freshness.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetStaleFor changes how long expired entries stay available for
// revalidation.
func (m *Manager) SetStaleFor(d time.Duration) {
	m.staleFor = d
}

// Lookup returns the entry stored under key and whether it is still fresh.
// Stale entries are returned too; they can only be used after a 304.
func (m *Manager) Lookup(ctx context.Context, key CacheKey) (*Entry, bool, error) {
	e, err := m.load(ctx, key.String())
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			lookupsTotal.WithLabelValues(m.backend, "miss").Inc()
		} else {
			errorsTotal.WithLabelValues("get").Inc()
		}
		return nil, false, err
	}

	fresh := e.Fresh(m.now())
	if fresh {
		lookupsTotal.WithLabelValues(m.backend, "fresh").Inc()
	} else {
		lookupsTotal.WithLabelValues(m.backend, "stale").Inc()
	}
	return e, fresh, nil
}

// StoreResponse records a 200 answer under key. The response body stays
// readable. Responses that are neither fresh nor revalidatable are skipped.
func (m *Manager) StoreResponse(ctx context.Context, key CacheKey, resp *http.Response) error {
	e, err := FromResponse(resp, m.now())
	if err != nil || e == nil {
		return err
	}
	return m.put(ctx, key.String(), e)
}

// Revalidated extends a stale entry after the API answered 304 with header.
func (m *Manager) Revalidated(ctx context.Context, key CacheKey, e *Entry, header http.Header) error {
	if e == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	notModifiedTotal.Inc()

	now := m.now()
	until, ok := freshUntil(header, now)
	if !ok {
		return m.Delete(ctx, key)
	}
	updated := *e
	updated.FreshUntil = until
	if etag := header.Get("ETag"); etag != "" {
		updated.ETag = etag
	}
	return m.put(ctx, key.String(), &updated)
}

// Delete removes the entry under key.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if m.redis == nil {
		m.mu.Lock()
		delete(m.local, key.String())
		m.mu.Unlock()
		return nil
	}
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		errorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, k string) (*Entry, error) {
	if m.redis == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		le, ok := m.local[k]
		if !ok {
			return nil, ErrCacheMiss
		}
		if !m.now().Before(le.until) {
			delete(m.local, k)
			return nil, ErrCacheMiss
		}
		return le.entry, nil
	}

	data, err := m.redis.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &e, nil
}

func (m *Manager) put(ctx context.Context, k string, e *Entry) error {
	now := m.now()
	keep := e.keepFor(now, m.staleFor)
	if keep <= 0 {
		return nil
	}

	if m.redis == nil {
		m.mu.Lock()
		m.local[k] = localEntry{entry: e, until: now.Add(keep)}
		m.mu.Unlock()
		storedBytes.WithLabelValues(m.backend).Add(float64(len(e.Body)))
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		errorsTotal.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := m.redis.Set(ctx, k, data, keep).Err(); err != nil {
		errorsTotal.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	storedBytes.WithLabelValues(m.backend).Add(float64(len(data)))
	return nil
}
