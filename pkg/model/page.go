package model

// PageInfo is the "info" block of a paged API response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

// PageResponse is the raw JSON envelope of GET /character/?page=n.
type PageResponse struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// Page is one batch of characters plus the totals needed for pagination.
type Page struct {
	Items      []Character
	Number     int
	TotalCount int
	Info       PageInfo
}

// NewPage builds a Page from a decoded response.
func NewPage(number int, resp PageResponse) *Page {
	return &Page{
		Items:      resp.Results,
		Number:     number,
		TotalCount: resp.Info.Count,
		Info:       resp.Info,
	}
}

// TotalPages returns the page count reported by the API. Without one it is
// derived from the total and the size of this page, which only holds for a
// full page. The result is never below 1.
func (p *Page) TotalPages() int {
	if p == nil {
		return 1
	}
	total := p.Info.Pages
	if perPage := len(p.Items); total <= 0 && perPage > 0 && p.TotalCount > 0 {
		total = (p.TotalCount + perPage - 1) / perPage
	}
	if total < 1 {
		return 1
	}
	return total
}

// IDs returns the character ids of the page in order.
func (p *Page) IDs() []int {
	if p == nil {
		return nil
	}
	ids := make([]int, len(p.Items))
	for i, c := range p.Items {
		ids[i] = c.ID
	}
	return ids
}
