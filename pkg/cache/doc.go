// Package cache keeps character API responses so repeated page and id
// lookups do not hit the API.
//
// An entry is fresh until the time its response allowed (Cache-Control
// max-age, then Expires, then DefaultTTL). A fresh entry is served without a
// request. Once stale, an entry with an ETag or Last-Modified is kept for
// DefaultStaleFor and turns the next request into a conditional one; a 304
// answer makes it fresh again.
//
//	manager := cache.NewManager(redisClient) // or cache.NewMemoryManager()
//
//	key := cache.KeyFromURL(req.URL)
//	entry, fresh, err := manager.Lookup(ctx, key)
//	switch {
//	case errors.Is(err, cache.ErrCacheMiss):
//		// plain request, then manager.StoreResponse
//	case fresh:
//		return entry.Response(cache.SourceFresh), nil
//	default:
//		entry.Conditional(req)
//		// on 304: manager.Revalidated(ctx, key, entry, resp.Header)
//	}
//
// # Metrics
//
//   - characters_cache_lookups_total{backend,result}
//   - characters_cache_stored_bytes_total{backend}
//   - characters_304_responses_total
//   - characters_conditional_requests_total
//   - characters_cache_errors_total{operation}
package cache
