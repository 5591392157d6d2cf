package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Pagination defaults and bounds for list queries.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100

	// maxPage keeps the computed offset well inside int range.
	maxPage = math.MaxInt32
)

// SearchQuery is a normalized list request: Search is trimmed, Page and
// Limit are already clamped.
type SearchQuery struct {
	Search string
	Page   int
	Limit  int
}

// NewSearchQuery clamps page to [1, maxPage] and limit to [1, MaxLimit].
func NewSearchQuery(search string, page, limit int) SearchQuery {
	return SearchQuery{
		Search: strings.TrimSpace(search),
		Page:   clamp(page, 1, maxPage),
		Limit:  clamp(limit, 1, MaxLimit),
	}
}

// ParseSearchQuery builds a SearchQuery from raw query parameters. Missing or
// non-numeric page/limit values fall back to the defaults and are never errors;
// numbers too large for an int are clamped like any other out-of-range value.
func ParseSearchQuery(search, page, limit string) SearchQuery {
	return NewSearchQuery(search, atoiDefault(page, DefaultPage), atoiDefault(limit, DefaultLimit))
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	// on ErrRange Atoi returns the saturated value
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Offset is the number of filtered records before the requested page.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HasFilter reports whether the query restricts the result set.
func (q SearchQuery) HasFilter() bool {
	return q.Search != ""
}

// SearchableFields extracts the six text renderings a search term is
// matched against. A record matches when any one of them contains the term.
var SearchableFields = []func(Advocate) string{
	func(a Advocate) string { return a.FirstName },
	func(a Advocate) string { return a.LastName },
	func(a Advocate) string { return a.City },
	func(a Advocate) string { return a.Degree },
	Advocate.SpecialtiesText,
	func(a Advocate) string { return strconv.Itoa(a.YearsOfExperience) },
}

// Matches reports whether the record belongs to the filtered set of q.
// Matching is a case-insensitive substring test.
func (q SearchQuery) Matches(a Advocate) bool {
	if !q.HasFilter() {
		return true
	}
	term := strings.ToLower(q.Search)
	for _, field := range SearchableFields {
		if strings.Contains(strings.ToLower(field(a)), term) {
			return true
		}
	}
	return false
}

// Pagination is the metadata returned alongside a page of records.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination computes page metadata for q given the filtered total.
func NewPagination(q SearchQuery, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    q.Page < totalPages,
		HasPrev:    q.Page > 1,
	}
}

// AdvocatePage is one page of search results.
type AdvocatePage struct {
	Records    []Advocate `json:"data"`
	Pagination Pagination `json:"pagination"`
}
