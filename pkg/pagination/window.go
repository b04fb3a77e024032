package pagination

// MaxVisiblePages bounds the number of page buttons shown at once.
const MaxVisiblePages = 5

const sidePages = (MaxVisiblePages - 1) / 2

// Window is the run of page numbers rendered as controls.
type Window struct {
	Start            int
	End              int
	Pages            []int
	LeadingEllipsis  bool
	TrailingEllipsis bool
}

// ComputeWindow returns the page window for current out of total.
//
// The window starts sidePages before current and spans MaxVisiblePages
// pages, cut at total. On the last page the window keeps its start, so
// 10 of 10 yields [8 9 10]. Out of range inputs are clamped.
func ComputeWindow(current, total int) Window {
	total = max(total, 1)
	current = min(max(current, 1), total)

	start := max(1, current-sidePages)
	end := min(total, start+MaxVisiblePages-1)
	if current == total {
		end = total
	}

	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}

	return Window{
		Start:            start,
		End:              end,
		Pages:            pages,
		LeadingEllipsis:  start > 1,
		TrailingEllipsis: end < total,
	}
}

// Contains reports whether page n is one of the window's buttons.
func (w Window) Contains(n int) bool {
	return n >= w.Start && n <= w.End
}
