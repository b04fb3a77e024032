package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix is the namespace of every cache key.
const KeyPrefix = "characters:http"

// CacheKey identifies one cached API response.
type CacheKey struct {
	// Endpoint is the request path, e.g. "/api/character/" or "/api/character/1,2,3".
	Endpoint string

	// QueryParams are the query parameters, e.g. {"page": "2"}.
	QueryParams url.Values
}

// String generates a deterministic key.
// Format: characters:http:endpoint:query1=val1:query2=val2
//
// Example:
//
//	characters:http:api/character:page=2
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}

// KeyFromURL builds the cache key of a request URL.
func KeyFromURL(u *url.URL) CacheKey {
	if u == nil {
		return CacheKey{}
	}
	return CacheKey{
		Endpoint:    u.Path,
		QueryParams: u.Query(),
	}
}
