package commands

import (
	"fmt"
	"strconv"

	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/spf13/cobra"
)

// page N: show page N and remember it as the current page.
func pageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page <n>",
		Short: "Show one page of characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("page must be a positive number (got %q)", args[0])
			}

			ctx := cmd.Context()
			a := appCtx
			if err := a.browser.Load(ctx); err != nil {
				return err
			}
			if n != a.browser.State().Nav.Current {
				ev := events.Event{Name: events.PageGoto, Value: strconv.Itoa(n)}
				if err := a.browser.Dispatch(ctx, ev); err != nil {
					return err
				}
			}
			if err := a.show(cmd.OutOrStdout()); err != nil {
				return err
			}
			return a.browser.Unload(ctx)
		},
	}
}
