package page

import (
	"math"
	"net/url"
	"strconv"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

// Request is a 1-based page selection.
type Request struct {
	Page    int
	PerPage int
}

// Offset saturates at math.MaxInt instead of overflowing for huge pages.
func (r Request) Offset() int {
	if r.Page <= 1 || r.PerPage <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PerPage {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PerPage
}

func (r Request) Limit() int { return r.PerPage }

// Slice returns the window of items selected by r; an out-of-range page is
// an empty, non-nil slice.
func Slice[T any](items []T, r Request) []T {
	start := r.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+min(r.Limit(), len(items)-start), len(items))
	return items[start:end]
}

// Parse reads `page` and `perpage` from a query string.
func Parse(q url.Values, defaultSize, maxSize int) (Request, error) {
	r := Request{Page: 1, PerPage: defaultSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return r, apperr.BadRequest("page must be a positive integer")
		}
		r.Page = n
	}
	if v := q.Get("perpage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return r, apperr.BadRequest("perpage must be a positive integer")
		}
		r.PerPage = n
	}
	if maxSize > 0 && r.PerPage > maxSize {
		r.PerPage = maxSize
	}
	return r, nil
}

type Envelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewEnvelope wraps one page of results with links relative to u.
func NewEnvelope[T any](u *url.URL, r Request, count int, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{Count: count, Results: results}
	if count > 0 && r.PerPage > 0 && r.Page <= (count-1)/r.PerPage {
		env.Next = link(u, r.Page+1)
	}
	if r.Page > 1 {
		env.Previous = link(u, r.Page-1)
	}
	return env
}

func link(u *url.URL, p int) *string {
	if u == nil {
		return nil
	}
	cp := *u
	q := cp.Query()
	q.Set("page", strconv.Itoa(p))
	cp.RawQuery = q.Encode()
	s := cp.String()
	return &s
}
