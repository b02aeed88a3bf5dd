// Package ui holds the presentation state machines and view-model builders
// shared by the page handlers.
package ui

import "strconv"

// Carousel is a cursor over n items.
//
// Next wraps past the end back to 0. Prev clamps at 0 and never wraps.
type Carousel struct {
	Index int
	Len   int
}

// NewCarousel returns a carousel positioned at index, clamped into range.
func NewCarousel(index, n int) Carousel {
	if n < 0 {
		n = 0
	}
	if index < 0 || index >= n {
		index = 0
	}
	return Carousel{Index: index, Len: n}
}

// ParseCarousel reads a cursor from a query parameter value.
func ParseCarousel(raw string, n int) Carousel {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		idx = 0
	}
	return NewCarousel(idx, n)
}

// Next returns the carousel advanced by one, wrapping to 0.
func (c Carousel) Next() Carousel {
	if c.Len == 0 {
		return c
	}
	return Carousel{Index: (c.Index + 1) % c.Len, Len: c.Len}
}

// Prev returns the carousel moved back by one. At index 0 it is a no-op.
func (c Carousel) Prev() Carousel {
	if c.Index > 0 {
		return Carousel{Index: c.Index - 1, Len: c.Len}
	}
	return c
}

// ShowControls reports whether navigation should be rendered.
func (c Carousel) ShowControls() bool {
	return c.Len > 1
}

// Empty reports whether there is nothing to show.
func (c Carousel) Empty() bool {
	return c.Len == 0
}

// Position is the 1-based index for "i / n" indicators.
func (c Carousel) Position() int {
	return c.Index + 1
}
