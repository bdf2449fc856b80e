package app

// DefaultPageSize matches the reviews page of the UI.
const DefaultPageSize = 10

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// TotalPages is max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage bounds a 1-based page number to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns items[(page-1)*pageSize : page*pageSize]. Out-of-range
// pages and non-positive sizes produce an empty page rather than a panic.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	out := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(len(items), pageSize),
		Total:      len(items),
	}
	if pageSize <= 0 || page < 1 {
		return out
	}
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return out
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out.Items = append(out.Items, items[start:end]...)
	return out
}
