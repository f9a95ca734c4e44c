package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit applies when an endpoint does not choose its own default.
	DefaultLimit = 20
	// MaxLimit caps every list endpoint.
	MaxLimit = 100
	// MaxOffset bounds how deep a page may reach so offsets stay well inside
	// int32 for the Firestore client.
	MaxOffset = 1 << 20
)

var (
	ErrInvalidPage  = errors.New("pagination: invalid page")
	ErrInvalidLimit = errors.New("pagination: invalid limit")
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block returned next to list data.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Options tunes Parse per endpoint.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Parse reads page and limit from the query. Numeric values outside the
// accepted range are clamped; non-numeric values are rejected.
func Parse(values url.Values, opts Options) (Params, error) {
	maxLimit := opts.MaxLimit
	if maxLimit <= 0 || maxLimit > MaxLimit {
		maxLimit = MaxLimit
	}
	defLimit := opts.DefaultLimit
	if defLimit <= 0 {
		defLimit = DefaultLimit
	}
	defLimit = clamp(defLimit, 1, maxLimit)

	params := Params{Page: 1, Limit: defLimit}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, ErrInvalidPage
		}
		params.Page = max(page, 1)
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, ErrInvalidLimit
		}
		params.Limit = clamp(limit, 1, maxLimit)
	}
	params.Page = min(params.Page, MaxOffset/params.Limit+1)
	return params, nil
}

// Offset is the number of items preceding the requested page.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > MaxOffset/p.Limit {
		return MaxOffset
	}
	return (p.Page - 1) * p.Limit
}

// Meta builds the response block for a result set of total items.
func (p Params) Meta(total int) Meta {
	if total < 0 {
		total = 0
	}
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// Window returns the [start, end) bounds of the page within total items.
func (p Params) Window(total int) (int, int) {
	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)
	return start, end
}

// Slice returns the page of items.
func Slice[T any](items []T, p Params) []T {
	start, end := p.Window(len(items))
	return items[start:end]
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
