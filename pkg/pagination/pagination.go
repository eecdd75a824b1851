package pagination

// DefaultLimit is the standard page size when a limit is not provided.
const DefaultLimit = 20

// MaxLimit caps how many rows any listing can request.
const MaxLimit = 100

// Params holds page/limit inputs from controllers.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the params to sane bounds.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.Limit
}

// Page is the discriminated listing envelope every paginated endpoint returns.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// NewPage assembles a Page from a slice and the total row count.
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	n := Normalize(params)
	totalPages := int(total / int64(n.Limit))
	if total%int64(n.Limit) != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       n.Page,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
