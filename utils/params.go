package utils

import (
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and page_size strings, clamping page_size to MaxPageSize.
func ParsePagination(pageRaw, sizeRaw string) Pagination {
	page, _ := strconv.Atoi(strings.TrimSpace(pageRaw))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(strings.TrimSpace(sizeRaw))
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

func (p Pagination) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size, defaulting a zero value to DefaultPageSize.
func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}

// ParseOrdering turns "price" / "-price" into an ORDER BY fragment. allowed maps the public
// field name to its column; unknown fields fall back to def.
func ParseOrdering(raw string, allowed map[string]string, def string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	desc := strings.HasPrefix(raw, "-")
	column, ok := allowed[strings.TrimPrefix(raw, "-")]
	if !ok {
		return def
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// ParseOptionalUint returns nil for empty or invalid input.
func ParseOptionalUint(raw string) *uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	u := uint(v)
	return &u
}

// ParseOptionalInt returns nil for empty or invalid input.
func ParseOptionalInt(raw string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}

// ParseOptionalBool accepts true/false/1/0, nil otherwise.
func ParseOptionalBool(raw string) *bool {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return nil
	}
	return &b
}

// LikeEscape is the escape character paired with LikeContains. Backslash is avoided because
// MySQL treats it as a string-literal escape and SQLite does not.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// LikeContains returns a lower-cased substring pattern for use with
// "LOWER(col) LIKE ? ESCAPE '!'". Wildcards in s match literally.
func LikeContains(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
