package cache

import (
	"net/http"
	"time"
)

// Entry is a stored API response. Until FreshUntil it is served without
// asking the API. After that it is kept for a while longer so a request for
// the same resource can be revalidated with its ETag or Last-Modified.
type Entry struct {
	Body         []byte      `json:"body"`
	Status       int         `json:"status"`
	Header       http.Header `json:"header"`
	ETag         string      `json:"etag,omitempty"`
	LastModified time.Time   `json:"last_modified,omitzero"`
	StoredAt     time.Time   `json:"stored_at"`
	FreshUntil   time.Time   `json:"fresh_until"`
}

// Fresh reports whether the entry may be served as-is at now.
func (e *Entry) Fresh(now time.Time) bool {
	return e != nil && now.Before(e.FreshUntil)
}

// Revalidatable reports whether the entry carries a validator.
func (e *Entry) Revalidatable() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}

// keepFor is how long the store should hold the entry at now: its remaining
// freshness, plus the stale window when it can be revalidated. Zero means
// there is nothing worth keeping.
func (e *Entry) keepFor(now time.Time, staleFor time.Duration) time.Duration {
	keep := e.FreshUntil.Sub(now)
	if keep < 0 {
		keep = 0
	}
	if e.Revalidatable() {
		keep += staleFor
	}
	return keep
}
