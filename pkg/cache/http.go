package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the freshness of a response that says nothing about it.
	DefaultTTL = 5 * time.Minute

	// HeaderCache marks responses served from the cache.
	HeaderCache = "X-Cache"

	// Values of HeaderCache.
	SourceFresh       = "HIT"
	SourceRevalidated = "REVALIDATED"
)

// FromResponse turns a response into an entry. The body is read and put
// back for the caller. A response marked no-store yields a nil entry.
func FromResponse(resp *http.Response, now time.Time) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	until, store := freshUntil(resp.Header, now)
	if !store {
		return nil, nil
	}

	e := &Entry{
		Body:       body,
		Status:     resp.StatusCode,
		Header:     resp.Header.Clone(),
		ETag:       resp.Header.Get("ETag"),
		StoredAt:   now,
		FreshUntil: until,
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		e.LastModified = lm
	}
	return e, nil
}

// Response rebuilds an HTTP response from the entry, tagged with source.
func (e *Entry) Response(source string) *http.Response {
	if e == nil {
		return nil
	}
	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(HeaderCache, source)

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
	}
}

// Conditional adds If-None-Match, or If-Modified-Since when no ETag is
// known, and reports whether the request became conditional.
func (e *Entry) Conditional(req *http.Request) bool {
	if req == nil || !e.Revalidatable() {
		return false
	}
	if e.ETag != "" {
		req.Header.Set("If-None-Match", e.ETag)
	} else {
		req.Header.Set("If-Modified-Since", e.LastModified.UTC().Format(http.TimeFormat))
	}
	return true
}

// freshUntil reads Cache-Control and Expires. max-age wins over Expires;
// no-cache makes the response stale at once; no-store forbids storing it.
func freshUntil(h http.Header, now time.Time) (time.Time, bool) {
	for _, directive := range strings.Split(h.Get("Cache-Control"), ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(strings.ToLower(directive)), "=")
		switch name {
		case "no-store":
			return time.Time{}, false
		case "no-cache":
			return now, true
		case "max-age":
			if secs, err := strconv.Atoi(strings.Trim(value, `"`)); err == nil {
				return now.Add(time.Duration(max(secs, 0)) * time.Second), true
			}
		}
	}

	if raw := h.Get("Expires"); raw != "" {
		expires, err := http.ParseTime(raw)
		if err != nil || expires.Before(now) {
			return now, true
		}
		return expires, true
	}
	return now.Add(DefaultTTL), true
}
