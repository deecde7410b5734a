// Package viewstate owns the browse state: the record collection, the
// applied filters, the search term and the current page. Every transition
// that can change the size of the filtered view resets or clamps the page.
//
// A Controller is not safe for concurrent use; it is meant to be driven from
// a single event loop.
package viewstate

import (
	"molecule-browser/internal/catalog"
	"molecule-browser/internal/paging"
)

// Status describes what the browse screen should show.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Ticket identifies one fetch request. Only the newest ticket may deliver.
type Ticket uint64

// Controller holds the browse view state.
type Controller struct {
	records  []catalog.Record
	hasData  bool
	filters  catalog.FilterState
	draft    string
	search   string
	page     int
	pageSize int

	issued  Ticket
	loading bool
	err     error
}

// New returns a controller with empty filters on page 1.
func New(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	return &Controller{page: 1, pageSize: pageSize}
}

// Filters returns a copy of the applied filter state.
func (c *Controller) Filters() catalog.FilterState { return c.filters.Clone() }

// SearchTerm returns the submitted search term.
func (c *Controller) SearchTerm() string { return c.search }

// Draft returns the staged, not yet submitted search text.
func (c *Controller) Draft() string { return c.draft }

// Page returns the current page number.
func (c *Controller) Page() int { return c.page }

// PageSize returns the configured page size.
func (c *Controller) PageSize() int { return c.pageSize }

// Records returns the current collection. Callers must not modify it.
func (c *Controller) Records() []catalog.Record { return c.records }

// Loading reports whether a fetch is outstanding.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the error of the last failed fetch, cleared by the next success.
func (c *Controller) Err() error { return c.err }

// ApplyFilters replaces the filter state and returns to page 1.
func (c *Controller) ApplyFilters(f catalog.FilterState) {
	c.filters = f.Clone()
	c.page = 1
}

// ClearFilters drops every field constraint and returns to page 1.
func (c *Controller) ClearFilters() {
	c.filters = catalog.FilterState{}
	c.page = 1
}

// SetSearchTerm stages term without affecting the view.
func (c *Controller) SetSearchTerm(term string) { c.draft = term }

// SubmitSearch makes the staged term effective, returns to page 1 and
// returns the submitted term.
func (c *Controller) SubmitSearch() string {
	c.search = c.draft
	c.page = 1
	return c.search
}

// Filtered is the current filtered view, recomputed on every call.
func (c *Controller) Filtered() []catalog.Record {
	return catalog.Apply(c.records, c.filters, c.search)
}

// TotalPages is the page count of the current filtered view.
func (c *Controller) TotalPages() int {
	return paging.TotalPages(len(c.Filtered()), c.pageSize)
}

// Nav returns the navigation guard for the current page.
func (c *Controller) Nav() paging.Nav {
	return paging.Nav{Current: c.page, Total: c.TotalPages()}
}

// ChangePage moves to n when 1 <= n <= TotalPages and reports whether it did.
func (c *Controller) ChangePage(n int) bool {
	if n < 1 || n > c.TotalPages() {
		return false
	}
	c.page = n
	return true
}

// PrevPage moves back one page; false on the first page.
func (c *Controller) PrevPage() bool {
	p, ok := c.Nav().Prev()
	if !ok {
		return false
	}
	return c.ChangePage(p)
}

// NextPage moves forward one page; false on the last page.
func (c *Controller) NextPage() bool {
	p, ok := c.Nav().Next()
	if !ok {
		return false
	}
	return c.ChangePage(p)
}

// BeginFetch marks the view as loading and issues a ticket that supersedes
// every earlier one.
func (c *Controller) BeginFetch() Ticket {
	c.issued++
	c.loading = true
	return c.issued
}

// CompleteFetch installs records fetched under t. Results for superseded
// tickets are dropped and false is returned.
func (c *Controller) CompleteFetch(t Ticket, records []catalog.Record) bool {
	if t != c.issued {
		return false
	}
	c.loading = false
	c.err = nil
	c.replace(records)
	return true
}

// FailFetch records err for t. Filters, page and the previous collection are
// left intact. Superseded tickets are ignored.
func (c *Controller) FailFetch(t Ticket, err error) bool {
	if t != c.issued {
		return false
	}
	c.loading = false
	c.err = err
	return true
}

// Seed installs a collection that did not come from a live fetch, such as a
// cached snapshot. It is ignored once a live fetch has completed.
func (c *Controller) Seed(records []catalog.Record) bool {
	if c.hasData {
		return false
	}
	c.records = append([]catalog.Record(nil), records...)
	c.clamp()
	return true
}

func (c *Controller) replace(records []catalog.Record) {
	c.records = append([]catalog.Record(nil), records...)
	c.hasData = true
	c.clamp()
}

func (c *Controller) clamp() {
	total := c.TotalPages()
	switch {
	case total == 0:
		c.page = 1
	case c.page > total:
		c.page = total
	case c.page < 1:
		c.page = 1
	}
}

// View is a read-only snapshot for rendering.
type View struct {
	Status  Status
	Err     error
	Matches int
	Total   int
	Items   []catalog.Record
	Window  []paging.Item
	Nav     paging.Nav
}

// Snapshot derives the render state from the current inputs.
func (c *Controller) Snapshot() View {
	filtered := c.Filtered()
	total := paging.TotalPages(len(filtered), c.pageSize)
	v := View{
		Err:     c.err,
		Matches: len(filtered),
		Total:   len(c.records),
		Items:   paging.Paginate(filtered, c.page, c.pageSize),
		Window:  paging.Window(c.page, total),
		Nav:     paging.Nav{Current: c.page, Total: total},
	}
	switch {
	case c.loading:
		v.Status = StatusLoading
	case c.err != nil:
		v.Status = StatusFailed
	case !c.hasData && c.records == nil:
		v.Status = StatusIdle
	case len(filtered) == 0:
		v.Status = StatusEmpty
	default:
		v.Status = StatusReady
	}
	return v
}
