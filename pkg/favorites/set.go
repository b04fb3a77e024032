// Package favorites holds the ordered set of favorite character ids.
package favorites

import (
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	togglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "characters_favorite_toggles_total",
		Help: "Favorite toggles by direction",
	}, []string{"action"})

	favoritesSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "characters_favorites",
		Help: "Number of favorite characters",
	})
)

// Set is an insertion-ordered set of character ids. The zero value is an
// empty set ready to use. A *Set is shared by the renderer and the view, so
// its contents are replaced in place rather than by swapping the pointer.
type Set struct {
	mu  sync.RWMutex
	ids []int
}

// New returns a set holding ids, duplicates dropped.
func New(ids ...int) *Set {
	s := &Set{}
	s.Replace(ids)
	return s
}

// Toggle adds id at the end when absent and removes it when present.
// It reports whether id is a favorite afterwards.
func (s *Set) Toggle(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		togglesTotal.WithLabelValues("remove").Inc()
		favoritesSize.Set(float64(len(s.ids)))
		return false
	}
	s.ids = append(s.ids, id)
	togglesTotal.WithLabelValues("add").Inc()
	favoritesSize.Set(float64(len(s.ids)))
	return true
}

// Contains reports whether id is a favorite.
func (s *Set) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the ids in insertion order.
func (s *Set) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	favoritesSize.Set(0)
}

// Replace swaps the contents for ids. The first occurrence of a duplicate
// wins.
func (s *Set) Replace(ids []int) {
	next := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = next
	favoritesSize.Set(float64(len(next)))
}
