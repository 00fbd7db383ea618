//revive:disable-next-line:var-naming // shared domain package name used across the project
package model

// DefaultPageSize is used when a caller does not specify a limit.
const DefaultPageSize = 9

// Page is the uniform paginated result shape every list service
// returns, whatever the backend actually sent.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page with TotalPages computed from total and limit.
// TotalPages is never taken from the backend. It is at least 1 even for
// an empty result set, and the page number is 1-indexed.
func NewPage[T any](data []T, total, page, limit int) Page[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}

	if data == nil {
		data = []T{}
	}

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}
