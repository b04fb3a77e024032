// Package pagination holds the page navigation logic of the browser.
//
// ComputeWindow derives the visible page numbers around the current page,
// with leading and trailing ellipsis markers. State tracks the current page
// against the total and implements first/prev/goto/next/last.
//
// BatchFetcher prefetches every page of the roster through a worker pool:
//
//	fetcher := pagination.NewBatchFetcher(apiClient, pagination.DefaultConfig())
//	pages, err := fetcher.FetchAllPages(ctx)
//
// The batch fetcher:
//   - Fetches the first page to learn the total page count
//   - Spawns a worker pool (default 4 workers)
//   - Distributes the remaining pages across workers
//   - Returns partial results together with the first worker error
package pagination
