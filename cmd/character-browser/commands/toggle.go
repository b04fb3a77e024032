package commands

import (
	"fmt"
	"strconv"

	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/spf13/cobra"
)

// toggle ID: add or remove a favorite.
func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Add a character to the favorites or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("id must be a positive number (got %q)", args[0])
			}

			ctx := cmd.Context()
			a := appCtx
			if err := a.browser.Load(ctx); err != nil {
				return err
			}
			ev := events.Event{Name: events.ToggleFavorite, Value: strconv.Itoa(id)}
			if err := a.browser.Dispatch(ctx, ev); err != nil {
				return err
			}
			if err := a.browser.Unload(ctx); err != nil {
				return err
			}

			state := "removed from"
			if a.browser.State().Favorites.Contains(id) {
				state = "added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "character %d %s favorites (%d total)\n", id, state, a.browser.State().Favorites.Len())
			return nil
		},
	}
}
