// Package session persists the browser state (favorites and current page)
// to a key-value store between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Sternrassler/character-browser/pkg/favorites"
	"github.com/Sternrassler/character-browser/pkg/kv"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Keys under which the session is stored.
const (
	KeyCurrentPage = "currentPage"
	KeyFavorites   = "favoriteCharacters"
)

// ErrCorruptState marks a stored value that could not be decoded. The
// affected part of the state is reset to its default.
var ErrCorruptState = errors.New("corrupt persisted state")

// State is the mutable browser state. Its pointers are shared with the
// renderer and the view and stay valid across Load and Clear.
type State struct {
	Favorites *favorites.Set
	Nav       *pagination.State
}

// NewState returns a fresh state: no favorites, page 1.
func NewState() *State {
	return &State{
		Favorites: favorites.New(),
		Nav:       pagination.NewState(),
	}
}

// Persister loads and saves a State through a kv.Store.
type Persister struct {
	store  kv.Store
	logger zerolog.Logger
}

// NewPersister creates a persister on store.
func NewPersister(store kv.Store) *Persister {
	return &Persister{
		store:  store,
		logger: log.With().Str("component", "session").Logger(),
	}
}

// Load restores state from the store. Missing keys leave the defaults.
// Corrupt values reset their part of the state and are reported with an
// error wrapping ErrCorruptState; the rest of the state is still loaded.
func (p *Persister) Load(ctx context.Context, st *State) error {
	var errs []error

	raw, err := p.store.Get(ctx, KeyCurrentPage)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", KeyCurrentPage, err)
	default:
		page, convErr := strconv.Atoi(raw)
		if convErr != nil || page < 1 {
			st.Nav.Reset()
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrCorruptState, KeyCurrentPage, raw))
		} else {
			st.Nav.Current = page
			if st.Nav.Total < page {
				st.Nav.Total = page
			}
		}
	}

	raw, err = p.store.Get(ctx, KeyFavorites)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", KeyFavorites, err)
	default:
		var ids []int
		if jsonErr := json.Unmarshal([]byte(raw), &ids); jsonErr != nil {
			st.Favorites.Clear()
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrCorruptState, KeyFavorites, jsonErr))
		} else {
			st.Favorites.Replace(ids)
		}
	}

	p.logger.Debug().
		Int("current_page", st.Nav.Current).
		Int("favorites", st.Favorites.Len()).
		Msg("Session loaded")

	return errors.Join(errs...)
}

// Save writes the favorites and the current page.
func (p *Persister) Save(ctx context.Context, st *State) error {
	ids := st.Favorites.IDs()
	if ids == nil {
		ids = []int{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}

	if err := p.store.Set(ctx, KeyFavorites, string(encoded)); err != nil {
		return fmt.Errorf("save %s: %w", KeyFavorites, err)
	}
	if err := p.store.Set(ctx, KeyCurrentPage, strconv.Itoa(st.Nav.Current)); err != nil {
		return fmt.Errorf("save %s: %w", KeyCurrentPage, err)
	}

	p.logger.Debug().
		Int("current_page", st.Nav.Current).
		Int("favorites", len(ids)).
		Msg("Session saved")
	return nil
}

// Clear wipes everything the store holds, empties the favorites in place and
// returns to page 1.
func (p *Persister) Clear(ctx context.Context, st *State) error {
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	st.Favorites.Clear()
	st.Nav.Reset()

	p.logger.Info().Msg("Session cleared")
	return nil
}
