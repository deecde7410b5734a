// Package paging slices an ordered result into fixed-size pages and computes
// the page-number window shown by navigation controls.
package paging

import "strconv"

// DefaultPageSize is the number of records shown per page.
const DefaultPageSize = 20

// MaxVisible is the maximum count of page numbers in a window.
const MaxVisible = 5

// Paginate returns the items of the 1-based page. Pages outside the range,
// or a non-positive size, yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}

// TotalPages is ceil(count/size), 0 for an empty result.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Item is one entry of a page window: a page number or a truncation marker.
type Item struct {
	Page     int
	Ellipsis bool
}

func (it Item) String() string {
	if it.Ellipsis {
		return "..."
	}
	return strconv.Itoa(it.Page)
}

// Window computes the navigation window for current within total pages.
// current is clamped into [1,total]; total <= 0 yields no items.
func Window(current, total int) []Item {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	half := MaxVisible / 2

	if total <= MaxVisible {
		return pages(1, total)
	}

	var out []Item
	switch {
	case current <= half+1:
		out = append(out, pages(1, MaxVisible-1)...)
		out = append(out, Item{Ellipsis: true}, Item{Page: total})
	case current >= total-half:
		out = append(out, Item{Page: 1}, Item{Ellipsis: true})
		out = append(out, pages(total-MaxVisible+2, total)...)
	default:
		out = append(out, Item{Page: 1}, Item{Ellipsis: true})
		out = append(out, pages(current-1, current+1)...)
		out = append(out, Item{Ellipsis: true}, Item{Page: total})
	}
	return out
}

func pages(from, to int) []Item {
	out := make([]Item, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, Item{Page: p})
	}
	return out
}

// Nav guards page navigation at the bounds.
type Nav struct {
	Current int
	Total   int
}

// Visible reports whether a navigation control should render at all.
func (n Nav) Visible() bool { return n.Total > 1 }

// CanPrev reports whether a previous page exists.
func (n Nav) CanPrev() bool { return n.Total > 0 && n.Current > 1 }

// CanNext reports whether a next page exists.
func (n Nav) CanNext() bool { return n.Current < n.Total }

// Prev returns the previous page, or ok=false on the first page.
func (n Nav) Prev() (int, bool) {
	if !n.CanPrev() {
		return n.Current, false
	}
	return n.Current - 1, true
}

// Next returns the next page, or ok=false on the last page.
func (n Nav) Next() (int, bool) {
	if !n.CanNext() {
		return n.Current, false
	}
	return n.Current + 1, true
}
