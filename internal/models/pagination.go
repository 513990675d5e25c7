package models

// Pagination bounds shared by every list endpoint.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Page is the query window of a list request.
type Page struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=500"`
}

// Normalize applies the default limit.
func (p Page) Normalize() Page {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// Paginated is the envelope for list responses.
type Paginated[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// NewPaginated never returns a nil Items slice so lists encode as [].
func NewPaginated[T any](items []T, total int, page Page) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{Items: items, Total: total, Skip: page.Skip, Limit: page.Limit}
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}
