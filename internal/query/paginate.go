package query

// Page is one slice of a result set plus its metadata
type Page[T any] struct {
	Items  []T `json:"items"`
	Number int `json:"page"`
	Count  int `json:"page_count"`
	Size   int `json:"per_page"`
	Total  int `json:"total"`
}

// PageCount returns how many pages of size hold total records. An empty set
// still has one (empty) page.
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage moves page into [1, pageCount]
func ClampPage(page, pageCount int) int {
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// Paginate returns page number `page` of records. Out-of-range pages are
// clamped, never reported as errors.
func Paginate[T any](records []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	count := PageCount(total, size)
	number := ClampPage(page, count)

	start := (number - 1) * size
	end := min(start+size, total)

	items := make([]T, 0, end-start)
	items = append(items, records[start:end]...)

	return Page[T]{
		Items:  items,
		Number: number,
		Count:  count,
		Size:   size,
		Total:  total,
	}
}
