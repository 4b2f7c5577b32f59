package models

const (
	// DefaultPageSize is applied when the client omits page_size.
	DefaultPageSize = 10
	// MaxPageSize caps page_size so a single request cannot drain the table.
	MaxPageSize = 100
)

// PageQuery captures list query parameters shared by every entity.
type PageQuery struct {
	Page      int
	PageSize  int
	Filter    string
	SortBy    string
	SortOrder string
}

// Normalize clamps page and page_size into their valid ranges.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Offset returns the SQL offset for the normalized query.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination builds pagination metadata for a normalized query.
// TotalPages is ceil(total / page_size).
func NewPagination(q PageQuery, total int) *Pagination {
	q = q.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + q.PageSize - 1) / q.PageSize
	}
	return &Pagination{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
		TotalPages: pages,
	}
}
