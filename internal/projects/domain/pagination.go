package domain

// PageRequest carries validated pagination parameters. SortColumn is a
// whitelisted column name, safe to interpolate into ORDER BY.
type PageRequest struct {
	Page       int
	Limit      int
	SortColumn string
	SortOrder  string
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta describes one page of a result set.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPageMeta(p PageRequest, total int) PageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages}
}
