package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var got []Event
	d.Handle(PageGoto, func(_ context.Context, ev Event) error {
		got = append(got, ev)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), Event{Name: PageGoto, Value: "4"}))
	require.Len(t, got, 1)
	n, err := got[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	err = d.Dispatch(context.Background(), Event{Name: "nope"})
	assert.ErrorIs(t, err, ErrUnhandled)
}

func TestDispatcher_HandlerError(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	d.Handle(Back, func(context.Context, Event) error { return boom })

	assert.ErrorIs(t, d.Dispatch(context.Background(), Event{Name: Back}), boom)
}

func TestBindAndFind(t *testing.T) {
	root := dom.Element("div")
	first := dom.Element("span")
	Bind(first, PageGoto, "1")
	second := dom.Element("span")
	Bind(second, PageGoto, "2")
	next := dom.Element("button")
	Bind(next, PageNext, "")
	dom.Append(root, first, second, next)

	assert.Same(t, second, Find(root, PageGoto, "2"))
	assert.Same(t, first, Find(root, PageGoto, ""))
	assert.Nil(t, Find(root, PageGoto, "9"))

	ev, ok := FromNode(next)
	require.True(t, ok)
	assert.Equal(t, Event{Name: PageNext}, ev)
	_, hasValue := dom.Attr(next, AttrValue)
	assert.False(t, hasValue)

	_, ok = FromNode(root)
	assert.False(t, ok)
}

func TestClick(t *testing.T) {
	d := NewDispatcher()
	var clicked string
	d.Handle(ToggleFavorite, func(_ context.Context, ev Event) error {
		clicked = ev.Value
		return nil
	})

	btn := dom.Element("button")
	Bind(btn, ToggleFavorite, "42")
	require.NoError(t, d.Click(context.Background(), btn))
	assert.Equal(t, "42", clicked)

	assert.ErrorIs(t, d.Click(context.Background(), dom.Element("div")), ErrUnhandled)
}

func TestEvent_IntInvalid(t *testing.T) {
	_, err := Event{Name: PageGoto, Value: "x"}.Int()
	assert.Error(t, err)
}
