package commands

import (
	"fmt"
	"time"

	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/spf13/cobra"
)

var prefetchWorkers int

// prefetch: fetch every page in parallel, warming the response cache.
func prefetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Fetch all pages in parallel (warms the Redis cache)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bcfg := pagination.DefaultConfig()
			bcfg.MaxConcurrency = prefetchWorkers

			start := time.Now()
			pages, err := pagination.NewBatchFetcher(appCtx.api, bcfg).FetchAllPages(cmd.Context())

			characters := 0
			for _, p := range pages {
				characters += len(p.Items)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d pages, %d characters in %s\n",
				len(pages), characters, time.Since(start).Round(time.Millisecond))
			return err
		},
	}
	cmd.Flags().IntVar(&prefetchWorkers, "workers", cfg.PrefetchWorkers, "parallel requests")
	return cmd
}
