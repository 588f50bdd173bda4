package query

// Page is the result of executing a Spec: one page of items plus the
// figures the pagination envelope is built from. Constructed per
// request and immutable afterwards.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// NewPage pairs fetched items with their total, taking page and size from s.
func NewPage[T any](items []T, total int64, s *Spec) Page[T] {
	return Page[T]{Items: items, Total: total, Page: s.Page, PageSize: s.PageSize}
}

// Pages is ceil(Total/PageSize), and 0 when nothing matched.
func (p Page[T]) Pages() int64 {
	if p.Total <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return (p.Total + size - 1) / size
}
