package search

import "strings"

const (
	DefaultOrderBy   = "createdAt"
	DefaultDirection = "desc"
)

// ParseSort resolves the ordering of a reputation search from sort entries of
// the form "field:direction". Only the first entry is considered. A missing field
// selects DefaultOrderBy; a missing or unrecognised direction selects
// DefaultDirection.
func ParseSort(sort []string) (orderBy, direction string) {
	orderBy, direction = DefaultOrderBy, DefaultDirection
	if len(sort) == 0 {
		return orderBy, direction
	}

	field, dir, _ := strings.Cut(sort[0], ":")
	if field = strings.TrimSpace(field); field != "" {
		orderBy = field
	}
	switch d := strings.ToLower(strings.TrimSpace(dir)); d {
	case "asc", "desc":
		direction = d
	}
	return orderBy, direction
}
