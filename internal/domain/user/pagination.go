package user

const (
	// DefaultPage is used when no page is requested.
	DefaultPage = 1
	// DefaultPerPage is used when no page size is requested.
	DefaultPerPage = 10
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// PageRequest describes which slice of the collection to return.
// A zero Page or PerPage means the default; negative values are clamped to 1.
type PageRequest struct {
	Page    int
	PerPage int
	Sort    string
	Order   SortOrder
}

// Normalize fills defaults and clamps out-of-range values.
func (r PageRequest) Normalize() PageRequest {
	switch {
	case r.Page == 0:
		r.Page = DefaultPage
	case r.Page < 0:
		r.Page = 1
	}
	switch {
	case r.PerPage == 0:
		r.PerPage = DefaultPerPage
	case r.PerPage < 0:
		r.PerPage = 1
	}
	if r.Order != OrderDesc {
		r.Order = OrderAsc
	}
	return r
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Page       int // Current page number (1-based)
	PerPage    int // Number of records per page
	Total      int // Number of records before slicing
	TotalPages int // ceil(Total / PerPage)
}

// NewPagination creates a new Pagination instance with calculated total pages.
func NewPagination(total, page, perPage int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = total / perPage
		if total%perPage != 0 {
			totalPages++
		}
	}

	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Paginate sorts users according to req and returns the requested page.
// users is not modified. Slicing past the end yields an empty page.
func Paginate(users []User, req PageRequest) ([]User, Pagination) {
	req = req.Normalize()

	sorted := make([]User, len(users))
	copy(sorted, users)
	SortUsers(sorted, req.Sort, req.Order)

	total := len(sorted)
	meta := NewPagination(total, req.Page, req.PerPage)

	// Pages past the last one are empty. Checking before multiplying keeps
	// huge page numbers from wrapping around into the collection.
	start, end := total, total
	if req.Page-1 < meta.TotalPages {
		start = (req.Page - 1) * req.PerPage
		if req.PerPage < total-start {
			end = start + req.PerPage
		}
	}

	page := make([]User, end-start)
	copy(page, sorted[start:end])

	return page, meta
}
