package response

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, page, pageSize, total int) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return PageResponse[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}

// CursorlessPage is returned by endpoints that only know whether a further page exists.
type CursorlessPage[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	HasNextPage bool `json:"has_next_page"`
}

func NewCursorlessPage[T any](items []T, page, pageSize int, hasNext bool) CursorlessPage[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return CursorlessPage[T]{
		Items:       items,
		Page:        page,
		PageSize:    pageSize,
		HasNextPage: hasNext,
	}
}
