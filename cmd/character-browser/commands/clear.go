package commands

import (
	"fmt"

	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/spf13/cobra"
)

// clear: drop the stored favorites and page.
func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.browser.Dispatch(cmd.Context(), events.Event{Name: events.ClearStorage}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
			return nil
		},
	}
}
