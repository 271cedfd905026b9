// Package search ranks catalog books against a free-text query.
package search

import (
	"cmp"
	"slices"
	"time"

	"github.com/garyellow/prep-library-bot/internal/catalog"
	"github.com/garyellow/prep-library-bot/internal/fuzzy"
	"github.com/garyellow/prep-library-bot/internal/metrics"
	"github.com/garyellow/prep-library-bot/internal/sliceutil"
)

const (
	// DefaultLimit is the shortlist size taken before the threshold filter.
	DefaultLimit = 3
	// DefaultThreshold is the score a result must strictly exceed.
	DefaultThreshold = 50
)

// Result is a matched book with its score and its index in the catalog.
type Result struct {
	Book     catalog.Book
	Score    int
	Position int
}

// entry is one searchable title. pos is the book's position in the catalog.
type entry struct {
	pos  int
	key  string
	book catalog.Book
}

// Matcher scores every title in a catalog against a query.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	entries   []entry
	threshold int
	scorer    fuzzy.Scorer
	metrics   *metrics.Metrics
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the score a result must strictly exceed.
func WithThreshold(threshold int) Option {
	return func(m *Matcher) { m.threshold = threshold }
}

// WithScorer replaces the weighted fuzzy scorer. Inputs are normalised with fuzzy.Process.
func WithScorer(scorer fuzzy.Scorer) Option {
	return func(m *Matcher) { m.scorer = scorer }
}

// WithMetrics records every search.
func WithMetrics(met *metrics.Metrics) Option {
	return func(m *Matcher) { m.metrics = met }
}

// NewMatcher indexes c. Titles are normalised once here.
//
// Books sharing a title collapse to the first one in catalog order, so a title is
// never returned twice and the surfaced record is always the earliest row.
func NewMatcher(c *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		threshold: DefaultThreshold,
		scorer:    fuzzy.WRatioProcessed,
	}
	for _, opt := range opts {
		opt(m)
	}

	books := c.Books()
	all := make([]entry, 0, len(books))
	for i, b := range books {
		all = append(all, entry{pos: i, key: fuzzy.Process(b.Name), book: b})
	}
	all = sliceutil.Filter(all, func(e entry) bool { return e.book.Name != "" })
	m.entries = sliceutil.Deduplicate(all, func(e entry) string { return e.book.Name })

	return m
}

// Len returns the number of distinct searchable titles.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// Search returns at most limit books, best first, each scoring strictly above the
// threshold. The shortlist of limit is taken before filtering, so a catalog
// whose top entries all fall at or below the threshold yields nothing.
// Equal scores keep catalog order. A limit below 1 uses DefaultLimit.
func (m *Matcher) Search(query string, limit int) []Result {
	start := time.Now()
	if limit < 1 {
		limit = DefaultLimit
	}

	processed := fuzzy.Process(query)
	if processed == "" || len(m.entries) == 0 {
		outcome := metrics.SearchMiss
		if processed == "" {
			outcome = metrics.SearchEmptyQuery
		}
		m.metrics.RecordSearch(outcome, 0, time.Since(start).Seconds())
		return nil
	}

	scored := make([]Result, len(m.entries))
	for i, e := range m.entries {
		scored[i] = Result{Book: e.book, Score: m.scorer(processed, e.key), Position: e.pos}
	}

	// Entries are already in catalog order, so a stable sort on score alone
	// breaks ties by position.
	slices.SortStableFunc(scored, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	shortlist := scored[:min(limit, len(scored))]
	results := make([]Result, 0, len(shortlist))
	for _, r := range shortlist {
		if r.Score > m.threshold {
			results = append(results, r)
		}
	}

	outcome := metrics.SearchHit
	if len(results) == 0 {
		outcome = metrics.SearchMiss
		results = nil
	}
	m.metrics.RecordSearch(outcome, len(results), time.Since(start).Seconds())
	return results
}

// Books is Search without scores.
func (m *Matcher) Books(query string, limit int) []catalog.Book {
	results := m.Search(query, limit)
	if len(results) == 0 {
		return nil
	}
	books := make([]catalog.Book, len(results))
	for i, r := range results {
		books[i] = r.Book
	}
	return books
}
