package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "simple endpoint no params",
			key: CacheKey{
				Endpoint: "/api/character/",
			},
			want: "characters:http:api/character",
		},
		{
			name: "page query",
			key: CacheKey{
				Endpoint:    "/api/character/",
				QueryParams: url.Values{"page": []string{"2"}},
			},
			want: "characters:http:api/character:page=2",
		},
		{
			name: "multiple query params sorted",
			key: CacheKey{
				Endpoint: "/api/character/",
				QueryParams: url.Values{
					"status": []string{"alive"},
					"page":   []string{"3"},
				},
			},
			want: "characters:http:api/character:page=3:status=alive",
		},
		{
			name: "id list endpoint",
			key: CacheKey{
				Endpoint: "/api/character/1,2,3",
			},
			want: "characters:http:api/character/1,2,3",
		},
		{
			name: "empty key",
			key:  CacheKey{},
			want: "characters:http",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	key := CacheKey{
		Endpoint: "/api/character/",
		QueryParams: url.Values{
			"species": []string{"Human"},
			"page":    []string{"1"},
			"gender":  []string{"Female"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("iteration %d: key %q differs from %q", i, got, first)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	u, err := url.Parse("https://example.test/api/character/?page=4")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	got := KeyFromURL(u).String()
	want := "characters:http:api/character:page=4"
	if got != want {
		t.Errorf("KeyFromURL() = %q, want %q", got, want)
	}

	if KeyFromURL(nil).String() != KeyPrefix {
		t.Error("KeyFromURL(nil) should yield the bare prefix")
	}
}
