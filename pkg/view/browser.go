// Package view wires the document, the session state, the renderer and the
// character API into the two-screen browser: Browse (page grid with
// pagination) and Favorites.
package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/Sternrassler/character-browser/pkg/i18n"
	"github.com/Sternrassler/character-browser/pkg/kv"
	"github.com/Sternrassler/character-browser/pkg/model"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/Sternrassler/character-browser/pkg/render"
	"github.com/Sternrassler/character-browser/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/text/message"
)

var fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "characters_view_fetches_total",
	Help: "Fetches started by the view by kind and outcome",
}, []string{"kind", "outcome"})

// Screen is one of the two view states.
type Screen int

const (
	Browse Screen = iota
	Favorites
)

func (s Screen) String() string {
	if s == Favorites {
		return "favorites"
	}
	return "browse"
}

// Fetcher is the part of the API client the browser needs.
type Fetcher interface {
	FetchPage(ctx context.Context, pageNum int) (*model.Page, error)
	FetchCharacters(ctx context.Context, ids []int) ([]model.Character, error)
}

// Config holds the browser dependencies.
type Config struct {
	Fetcher Fetcher
	Store   kv.Store

	// Printer localizes labels. Optional.
	Printer *message.Printer

	// State is shared with the caller when set. Optional.
	State *session.State

	// OnUpdate runs on the loop goroutine after each handled event or
	// applied fetch. Optional.
	OnUpdate func(*Browser)
}

// Browser is the view orchestrator. Outside of Run it must be used from a
// single goroutine; inside Run the loop goroutine owns it.
type Browser struct {
	doc          *html.Node
	characters   *html.Node
	pager        *html.Node
	favContainer *html.Node
	favButton    *html.Node
	backButton   *html.Node
	clearButton  *html.Node

	state      *session.State
	persister  *session.Persister
	renderer   *render.Renderer
	fetcher    Fetcher
	dispatcher *events.Dispatcher
	onUpdate   func(*Browser)
	logger     zerolog.Logger

	screen Screen
	seen   map[int]model.Character

	// seq holds the latest request number per fetch kind.
	seq      map[string]uint64
	async    chan completion
	inflight int
}

// New creates a browser on a fresh document.
func New(cfg Config) (*Browser, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Printer == nil {
		cfg.Printer = i18n.Printer(i18n.DefaultLocale)
	}
	if cfg.State == nil {
		cfg.State = session.NewState()
	}

	r := render.New(cfg.Printer)
	doc := NewDocument(r)

	b := &Browser{
		doc:          doc,
		characters:   dom.FindByID(doc, IDCharacters),
		pager:        dom.FindByID(doc, IDPagination),
		favContainer: dom.FindByID(doc, IDFavorites),
		favButton:    dom.FindByID(doc, IDFavoritesButton),
		backButton:   dom.FindByID(doc, IDBackButton),
		clearButton:  dom.FindByID(doc, IDClearButton),
		state:        cfg.State,
		persister:    session.NewPersister(cfg.Store),
		renderer:     r,
		fetcher:      cfg.Fetcher,
		dispatcher:   events.NewDispatcher(),
		onUpdate:     cfg.OnUpdate,
		logger:       log.With().Str("component", "view").Logger(),
		seen:         make(map[int]model.Character),
		seq:          make(map[string]uint64),
	}

	b.dispatcher.Handle(events.ToggleFavorite, b.handleToggle)
	b.dispatcher.Handle(events.PageFirst, b.handleNav(func(s *pagination.State) bool { s.First(); return true }))
	b.dispatcher.Handle(events.PagePrev, b.handleNav((*pagination.State).Prev))
	b.dispatcher.Handle(events.PageNext, b.handleNav((*pagination.State).Next))
	b.dispatcher.Handle(events.PageLast, b.handleNav(func(s *pagination.State) bool { s.Last(); return true }))
	b.dispatcher.Handle(events.PageGoto, b.handleGoto)
	b.dispatcher.Handle(events.ShowFavorites, b.handleShowFavorites)
	b.dispatcher.Handle(events.Back, b.handleBack)
	b.dispatcher.Handle(events.ClearStorage, b.handleClear)

	b.setScreen(Browse)
	return b, nil
}

// Document returns the rendered document.
func (b *Browser) Document() *html.Node { return b.doc }

// State returns the session state.
func (b *Browser) State() *session.State { return b.state }

// Screen returns the active view state.
func (b *Browser) Screen() Screen { return b.screen }

// Container returns the element with the given id.
func (b *Browser) Container(id string) *html.Node {
	return dom.FindByID(b.doc, id)
}

// Load restores the session and fetches the current page. Corrupt stored
// state is logged and replaced with a fresh one. A stored page beyond the
// last page falls back to page 1.
func (b *Browser) Load(ctx context.Context) error {
	if err := b.persister.Load(ctx, b.state); err != nil {
		if !errors.Is(err, session.ErrCorruptState) {
			return fmt.Errorf("load session: %w", err)
		}
		b.logger.Warn().Err(err).Msg("Stored session is corrupt, starting fresh")
	}

	b.setScreen(Browse)
	err := b.requestPage(ctx, b.state.Nav.Current)
	if client.IsNotFound(err) && b.state.Nav.Current > 1 {
		b.logger.Warn().Int("page", b.state.Nav.Current).Msg("Stored page no longer exists, showing page 1")
		b.state.Nav.Reset()
		err = b.requestPage(ctx, 1)
	}
	return err
}

// Unload persists the session.
func (b *Browser) Unload(ctx context.Context) error {
	return b.persister.Save(ctx, b.state)
}

// Dispatch handles one event.
func (b *Browser) Dispatch(ctx context.Context, ev events.Event) error {
	b.logger.Debug().Str("event", ev.Name).Str("value", ev.Value).Msg("Event")
	return b.dispatcher.Dispatch(ctx, ev)
}

// Click handles the event bound to a node of the document.
func (b *Browser) Click(ctx context.Context, n *html.Node) error {
	return b.dispatcher.Click(ctx, n)
}

func (b *Browser) handleToggle(_ context.Context, ev events.Event) error {
	id, err := ev.Int()
	if err != nil {
		return err
	}
	added := b.state.Favorites.Toggle(id)
	b.renderer.UpdateToggles(b.doc, id, b.state.Favorites)

	b.logger.Debug().Int("id", id).Bool("favorite", added).Msg("Favorite toggled")
	return nil
}

// handleNav runs move on a copy of the navigation state and fetches the
// resulting page when it reports a change. Nav moves only in applyPage.
func (b *Browser) handleNav(move func(*pagination.State) bool) events.Handler {
	return func(ctx context.Context, _ events.Event) error {
		target := *b.state.Nav
		if !move(&target) {
			return nil
		}
		return b.requestPage(ctx, target.Current)
	}
}

func (b *Browser) handleGoto(ctx context.Context, ev events.Event) error {
	n, err := ev.Int()
	if err != nil {
		return err
	}
	target := *b.state.Nav
	target.GoTo(n)
	return b.requestPage(ctx, target.Current)
}

func (b *Browser) handleShowFavorites(ctx context.Context, _ events.Event) error {
	b.setScreen(Favorites)

	var missing []int
	for _, id := range b.state.Favorites.IDs() {
		if _, ok := b.seen[id]; !ok {
			missing = append(missing, id)
		}
	}

	return b.start(ctx, "favorites", func(ctx context.Context) (func(), error) {
		var fetched []model.Character
		var err error
		if len(missing) > 0 {
			fetched, err = b.fetcher.FetchCharacters(ctx, missing)
		}
		return func() {
			b.remember(fetched)
			b.renderFavorites()
		}, err
	})
}

func (b *Browser) handleBack(context.Context, events.Event) error {
	b.setScreen(Browse)
	return nil
}

// handleClear wipes the persisted session and every container. Page 1 is
// not fetched until the next navigation.
func (b *Browser) handleClear(ctx context.Context, _ events.Event) error {
	if err := b.persister.Clear(ctx, b.state); err != nil {
		return err
	}
	for kind := range b.seq {
		b.seq[kind]++
	}
	dom.ClearChildren(b.characters)
	dom.ClearChildren(b.pager)
	dom.ClearChildren(b.favContainer)
	return nil
}

func (b *Browser) requestPage(ctx context.Context, n int) error {
	return b.start(ctx, "page", func(ctx context.Context) (func(), error) {
		page, err := b.fetcher.FetchPage(ctx, n)
		if err != nil {
			return nil, err
		}
		return func() { b.applyPage(page) }, nil
	})
}

func (b *Browser) applyPage(page *model.Page) {
	b.remember(page.Items)
	b.state.Nav.SetTotal(page.TotalPages())
	b.state.Nav.Current = min(page.Number, b.state.Nav.Total)

	b.renderer.RenderCharacters(b.characters, page.Items, b.state.Favorites)
	b.renderer.RenderPagination(b.pager, b.state.Nav.Window(), b.state.Nav.Current)

	b.logger.Debug().
		Int("page", page.Number).
		Int("total_pages", b.state.Nav.Total).
		Int("items", len(page.Items)).
		Msg("Page rendered")
}

func (b *Browser) renderFavorites() {
	ids := b.state.Favorites.IDs()
	chars := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := b.seen[id]; ok {
			chars = append(chars, c)
		}
	}

	b.renderer.RenderCharacters(b.favContainer, chars, b.state.Favorites)
	if len(ids) == 0 {
		b.favContainer.AppendChild(dom.Append(dom.Element("p", "class", "empty"),
			dom.TextNode(b.renderer.Label(i18n.KeyFavoritesEmpty))))
	}
}

func (b *Browser) remember(chars []model.Character) {
	for _, c := range chars {
		b.seen[c.ID] = c
	}
}

// Seen reports whether character id was fetched during this session.
func (b *Browser) Seen(id int) bool {
	_, ok := b.seen[id]
	return ok
}

func (b *Browser) setScreen(s Screen) {
	b.screen = s
	browse := s == Browse
	dom.SetVisible(b.characters, browse)
	dom.SetVisible(b.pager, browse)
	dom.SetVisible(b.favButton, browse)
	dom.SetVisible(b.favContainer, !browse)
	dom.SetVisible(b.backButton, !browse)
	dom.SetVisible(b.clearButton, true)
}
