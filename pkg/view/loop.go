package view

import (
	"context"

	"github.com/Sternrassler/character-browser/pkg/events"
)

// completion carries the result of a fetch back to the loop.
type completion struct {
	kind  string
	seq   uint64
	apply func()
	err   error
}

// start runs a fetch of the given kind. Outside Run it completes inline.
// Inside Run the work runs on its own goroutine and the result is applied
// by the loop, unless a newer fetch of the same kind was started since.
func (b *Browser) start(ctx context.Context, kind string, work func(context.Context) (func(), error)) error {
	b.seq[kind]++
	seq := b.seq[kind]

	if b.async == nil {
		apply, err := work(ctx)
		return b.finish(completion{kind: kind, seq: seq, apply: apply, err: err})
	}

	b.inflight++
	out := b.async
	go func() {
		apply, err := work(ctx)
		select {
		case out <- completion{kind: kind, seq: seq, apply: apply, err: err}:
		case <-ctx.Done():
		}
	}()
	return nil
}

func (b *Browser) finish(c completion) error {
	if c.seq != b.seq[c.kind] {
		fetchesTotal.WithLabelValues(c.kind, "stale").Inc()
		b.logger.Debug().
			Str("kind", c.kind).
			Uint64("seq", c.seq).
			Uint64("latest", b.seq[c.kind]).
			Msg("Dropping stale fetch result")
		return nil
	}

	if c.err != nil {
		fetchesTotal.WithLabelValues(c.kind, "error").Inc()
		b.logger.Error().Err(c.err).Str("kind", c.kind).Msg("Fetch failed")
	} else {
		fetchesTotal.WithLabelValues(c.kind, "ok").Inc()
	}
	if c.apply != nil {
		c.apply()
	}
	return c.err
}

// Run consumes events until in is closed and every started fetch has
// completed, or until ctx is done. Handler and fetch errors are logged and
// do not stop the loop.
func (b *Browser) Run(ctx context.Context, in <-chan events.Event) error {
	b.async = make(chan completion)
	defer func() {
		b.async = nil
		b.inflight = 0
	}()

	for {
		if in == nil && b.inflight == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			if err := b.Dispatch(ctx, ev); err != nil {
				b.logger.Warn().Err(err).Str("event", ev.Name).Msg("Event failed")
			}
			b.notify()

		case c := <-b.async:
			b.inflight--
			_ = b.finish(c)
			b.notify()
		}
	}
}

// OnUpdate replaces the hook run after each handled event or applied fetch.
func (b *Browser) OnUpdate(fn func(*Browser)) {
	b.onUpdate = fn
}

// Pending returns the number of fetches started by Run that have not
// completed yet.
func (b *Browser) Pending() int {
	return b.inflight
}

func (b *Browser) notify() {
	if b.onUpdate != nil {
		b.onUpdate(b)
	}
}
