package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/Sternrassler/character-browser/pkg/view"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const browseHelp = `commands: next (n), prev (p), first, last, go N, fav ID, favorites (f), back (b), clear, help, quit (q)`

// browse: interactive session reading commands from stdin.
func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive browser reading commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := &lockedWriter{w: cmd.OutOrStdout()}
			a := appCtx

			if err := a.browser.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("Initial page could not be loaded")
			}
			if err := a.show(out); err != nil {
				return err
			}
			fmt.Fprintln(out, browseHelp)

			in := make(chan events.Event)
			loopCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			go readCommands(loopCtx, cmd.InOrStdin(), out, in)

			a.browser.OnUpdate(func(b *view.Browser) {
				if b.Pending() == 0 {
					_ = a.show(out)
				}
			})

			return runLoop(loopCtx, a, in)
		},
	}
}

// runLoop runs the event loop and saves the session once it ends.
func runLoop(ctx context.Context, a *app, in <-chan events.Event) error {
	err := a.browser.Run(ctx, in)
	if saveErr := a.browser.Unload(context.Background()); saveErr != nil {
		return saveErr
	}
	return err
}

// readCommands turns input lines into events until EOF or quit.
func readCommands(ctx context.Context, r io.Reader, out io.Writer, in chan<- events.Event) {
	defer close(in)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ev, quit, err := parseCommand(scanner.Text())
		if quit {
			return
		}
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if ev.Name == "" {
			continue
		}
		select {
		case in <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// parseCommand maps one input line to an event. An empty event with a nil
// error means there is nothing to do.
func parseCommand(line string) (ev events.Event, quit bool, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return events.Event{}, false, nil
	}

	needNumber := func(name string) (events.Event, bool, error) {
		if len(fields) != 2 {
			return events.Event{}, false, fmt.Errorf("usage: %s N", fields[0])
		}
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return events.Event{}, false, fmt.Errorf("%s: %q is not a number", fields[0], fields[1])
		}
		return events.Event{Name: name, Value: fields[1]}, false, nil
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return events.Event{}, true, nil
	case "n", "next":
		return events.Event{Name: events.PageNext}, false, nil
	case "p", "prev":
		return events.Event{Name: events.PagePrev}, false, nil
	case "first":
		return events.Event{Name: events.PageFirst}, false, nil
	case "last":
		return events.Event{Name: events.PageLast}, false, nil
	case "go", "page":
		return needNumber(events.PageGoto)
	case "fav", "toggle":
		return needNumber(events.ToggleFavorite)
	case "f", "favorites":
		return events.Event{Name: events.ShowFavorites}, false, nil
	case "b", "back":
		return events.Event{Name: events.Back}, false, nil
	case "clear":
		return events.Event{Name: events.ClearStorage}, false, nil
	case "help", "?":
		return events.Event{}, false, fmt.Errorf("%s", browseHelp)
	default:
		return events.Event{}, false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}

// lockedWriter serializes writes from the input reader and the event loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
