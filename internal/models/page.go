package models

import (
	"math"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// keeps (number-1)*size inside int for every accepted size
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page selects a window of a list. Number starts at 1.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// NewPage clamps number and size into the accepted range
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int {
	return NewPage(p.Number, p.Size).Size
}

func (p Page) Offset() int {
	n := NewPage(p.Number, p.Size)
	return (n.Number - 1) * n.Size
}

// Window returns the bounds [start, end) of the page within a list of n elements
func (p Page) Window(n int) (start, end int) {
	start = p.Offset()
	if start < 0 || start > n {
		start = n
	}
	end = start + p.Limit()
	if end > n {
		end = n
	}
	return start, end
}

// AuctionFilter narrows an auction listing by derived status at time Now
type AuctionFilter struct {
	Status Status
	Now    time.Time
	Page   Page
}
