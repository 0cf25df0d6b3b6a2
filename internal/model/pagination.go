package model

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page and limit to their allowed ranges.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

func NewPagination(total int64, req PageRequest) Pagination {
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Pagination{Total: total, Page: req.Page, Pages: pages, Limit: req.Limit}
}

// Page is the envelope every list endpoint returns.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
