package models

// Sort orders accepted by list endpoints.
const (
	SortCreated  = "created"
	SortStatus   = "status"
	SortPriority = "priority"
)

// ListFilter narrows a list of projects or tasks. Status and Priority hold raw
// enum values; empty means no filter. Search matches the name/title or the
// description, case-insensitively.
type ListFilter struct {
	Status   string
	Priority string
	Search   string
	Sort     string
}

// Zero reports whether the filter selects every live record in storage
// order. Sort is ignored since it is applied after loading.
func (f ListFilter) Zero() bool {
	return f.Status == "" && f.Priority == "" && f.Search == ""
}
