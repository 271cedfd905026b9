// Package catalog loads the book spreadsheet once at startup and exposes it read-only.
//
// A Catalog is in one of three states. Loaded and Empty come from a readable
// source; Unavailable marks a failed load that the process chose to survive.
// All three answer queries the same way when empty, but callers (readiness,
// metrics, logs) can tell them apart.
package catalog

import (
	"slices"
)

// State describes how a Catalog came to be.
type State int

const (
	// StateLoaded means the source was read and holds at least one book.
	StateLoaded State = iota
	// StateEmpty means the source was read but holds no usable rows.
	StateEmpty
	// StateUnavailable means the source could not be read.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// RowIssue records a data row that was skipped or altered during load.
// Row is the 1-based spreadsheet row number, header included.
type RowIssue struct {
	Row    int
	Reason string
}

// Catalog is an immutable, ordered set of books.
type Catalog struct {
	source string
	books  []Book
	state  State
	err    error
	issues []RowIssue
}

// New wraps books read from source. The slice is copied.
func New(source string, books []Book) *Catalog {
	state := StateLoaded
	if len(books) == 0 {
		state = StateEmpty
	}
	return &Catalog{
		source: source,
		books:  slices.Clone(books),
		state:  state,
	}
}

// Unavailable returns an empty catalog that remembers why source failed to load.
func Unavailable(source string, err error) *Catalog {
	return &Catalog{source: source, state: StateUnavailable, err: err}
}

// Books returns the books in source order. Callers must not modify the slice.
func (c *Catalog) Books() []Book {
	if c == nil {
		return nil
	}
	return c.books
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.books)
}

// State reports how the catalog was produced. A nil catalog is unavailable.
func (c *Catalog) State() State {
	if c == nil {
		return StateUnavailable
	}
	return c.state
}

// Err returns the load failure for an unavailable catalog, nil otherwise.
func (c *Catalog) Err() error {
	if c == nil {
		return nil
	}
	return c.err
}

// Source returns the path the catalog was read from.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Issues returns the rows skipped or altered during load.
func (c *Catalog) Issues() []RowIssue {
	if c == nil {
		return nil
	}
	return c.issues
}
