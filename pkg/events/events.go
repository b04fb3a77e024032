// Package events maps UI event names to handlers. Controls in the document
// carry their event in data-event and data-value attributes, so a click on
// a node can be turned back into an Event.
package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/html"
)

// Event names raised by the rendered controls.
const (
	ToggleFavorite = "toggle-favorite"
	PageFirst      = "page-first"
	PagePrev       = "page-prev"
	PageGoto       = "page-goto"
	PageNext       = "page-next"
	PageLast       = "page-last"
	ShowFavorites  = "show-favorites"
	Back           = "back"
	ClearStorage   = "clear-storage"
)

// Attributes binding a node to an event.
const (
	AttrEvent = "data-event"
	AttrValue = "data-value"
)

// ErrUnhandled is returned by Dispatch for an event without a handler.
var ErrUnhandled = errors.New("unhandled event")

var dispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "characters_events_total",
	Help: "UI events dispatched by name and outcome",
}, []string{"event", "outcome"})

// Event is one user interaction.
type Event struct {
	Name  string
	Value string
}

// Int returns Value as an integer.
func (e Event) Int() (int, error) {
	n, err := strconv.Atoi(e.Value)
	if err != nil {
		return 0, fmt.Errorf("event %s: value %q is not a number", e.Name, e.Value)
	}
	return n, nil
}

// Handler reacts to an event.
type Handler func(ctx context.Context, ev Event) error

// Dispatcher routes events to handlers by name.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher returns a dispatcher without handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Handle registers h for name, replacing any previous handler.
func (d *Dispatcher) Handle(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Dispatch runs the handler registered for ev.Name.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	d.mu.RLock()
	h, ok := d.handlers[ev.Name]
	d.mu.RUnlock()

	if !ok {
		dispatchedTotal.WithLabelValues("unknown", "unhandled").Inc()
		return fmt.Errorf("%w: %q", ErrUnhandled, ev.Name)
	}
	if err := h(ctx, ev); err != nil {
		dispatchedTotal.WithLabelValues(ev.Name, "error").Inc()
		return err
	}
	dispatchedTotal.WithLabelValues(ev.Name, "ok").Inc()
	return nil
}

// Bind marks n as raising event name with value. An empty value is not
// written.
func Bind(n *html.Node, name, value string) {
	dom.SetAttr(n, AttrEvent, name)
	if value != "" {
		dom.SetAttr(n, AttrValue, value)
	}
}

// FromNode reads the event bound to n.
func FromNode(n *html.Node) (Event, bool) {
	name, ok := dom.Attr(n, AttrEvent)
	if !ok || name == "" {
		return Event{}, false
	}
	value, _ := dom.Attr(n, AttrValue)
	return Event{Name: name, Value: value}, true
}

// Find returns the first node under root bound to name and value. An empty
// value matches any value.
func Find(root *html.Node, name, value string) *html.Node {
	return dom.Find(root, func(n *html.Node) bool {
		ev, ok := FromNode(n)
		return ok && ev.Name == name && (value == "" || ev.Value == value)
	})
}

// Click dispatches the event bound to n.
func (d *Dispatcher) Click(ctx context.Context, n *html.Node) error {
	ev, ok := FromNode(n)
	if !ok {
		return fmt.Errorf("%w: node <%s> has no %s", ErrUnhandled, n.Data, AttrEvent)
	}
	return d.Dispatch(ctx, ev)
}
