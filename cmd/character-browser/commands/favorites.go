package commands

import (
	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/spf13/cobra"
)

// favorites: show the favorite characters.
func favoritesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "Show the favorite characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := appCtx
			if err := a.browser.Load(ctx); err != nil {
				return err
			}
			if err := a.browser.Dispatch(ctx, events.Event{Name: events.ShowFavorites}); err != nil {
				return err
			}
			return a.show(cmd.OutOrStdout())
		},
	}
}
