// Package paging slices an ordered row sequence into fixed-size pages and
// computes the page-number window shown by navigation controls.
package paging

import (
	"errors"
	"fmt"
	"slices"
)

// AllowedPageSizes are the page sizes a Paginator accepts.
var AllowedPageSizes = []int{10, 25, 50, 100}

// ErrInvalidPageSize is returned by New for a size outside AllowedPageSizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// Paginator pages over a row count with a fixed page size.
type Paginator struct {
	size int
}

// New returns a Paginator for size.
//
// Callers that let the user change the page size must reset the current
// page number to 1 when they do; Paginator keeps no cursor of its own.
func New(size int) (Paginator, error) {
	if slices.Contains(AllowedPageSizes, size) {
		return Paginator{size: size}, nil
	}
	return Paginator{}, fmt.Errorf("%w: %d (allowed: %v)", ErrInvalidPageSize, size, AllowedPageSizes)
}

// Size returns the page size.
func (p Paginator) Size() int { return p.size }

// TotalPages returns ceil(n/size); zero when n is zero.
func (p Paginator) TotalPages(n int) int {
	if n <= 0 || p.size <= 0 {
		return 0
	}
	return (n + p.size - 1) / p.size
}

// Bounds returns the half-open slice bounds of page number over n rows.
// ok is false when number is < 1 or past the last page.
func (p Paginator) Bounds(n, number int) (start, end int, ok bool) {
	if number < 1 || number > p.TotalPages(n) {
		return 0, 0, false
	}
	start = (number - 1) * p.size
	end = min(start+p.size, n)
	return start, end, true
}

// Range returns the 1-based "showing from to to of n" bounds of a page.
// Both are zero for an empty or out-of-range page.
func (p Paginator) Range(n, number int) (from, to int) {
	start, end, ok := p.Bounds(n, number)
	if !ok {
		return 0, 0
	}
	return start + 1, end
}

// Page is one page of rows.
type Page[T any] struct {
	Number     int `json:"page" yaml:"page"`
	Size       int `json:"size" yaml:"size"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
	TotalRows  int `json:"total_rows" yaml:"total_rows"`
	From       int `json:"from" yaml:"from"`
	To         int `json:"to" yaml:"to"`
	Rows       []T `json:"rows" yaml:"rows"`
}

// Slice returns page number of rows. A number beyond the last page, or
// below 1, yields an empty page rather than being clamped.
func Slice[T any](p Paginator, rows []T, number int) Page[T] {
	pg := Page[T]{
		Number:     number,
		Size:       p.size,
		TotalPages: p.TotalPages(len(rows)),
		TotalRows:  len(rows),
		Rows:       []T{},
	}
	start, end, ok := p.Bounds(len(rows), number)
	if !ok {
		return pg
	}
	pg.From, pg.To = start+1, end
	pg.Rows = rows[start:end]
	return pg
}

// Window returns the page numbers to render around current: the first and
// last page plus current and its neighbours, ascending and without
// duplicates. It is empty when total is zero.
func Window(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	out := make([]int, 0, 5)
	add := func(n int) {
		if n >= 1 && n <= total && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	add(1)
	for n := current - 1; n <= current+1; n++ {
		add(n)
	}
	add(total)
	slices.Sort(out)
	return out
}

// Gaps returns the positions in window after which an ellipsis belongs,
// i.e. where the next page number is not adjacent.
func Gaps(window []int) []int {
	var out []int
	for i := 0; i+1 < len(window); i++ {
		if window[i+1]-window[i] > 1 {
			out = append(out, i)
		}
	}
	return out
}
