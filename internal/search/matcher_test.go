package search

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/garyellow/prep-library-bot/internal/catalog"
	"github.com/garyellow/prep-library-bot/internal/metrics"
)

func newCatalog(names ...string) *catalog.Catalog {
	books := make([]catalog.Book, len(names))
	for i, n := range names {
		books[i] = catalog.Book{Name: n, Author: fmt.Sprintf("author %d", i), DownloadURL: fmt.Sprintf("http://x/%d", i)}
	}
	return catalog.New("test.xlsx", books)
}

// fixedScorer scores by exact normalised title.
func fixedScorer(scores map[string]int) func(a, b string) int {
	return func(_, title string) int { return scores[title] }
}

func checkNames(t *testing.T, results []Result, want ...string) {
	t.Helper()
	if got := names(results); !slices.Equal(got, want) {
		t.Errorf("results = %q, want %q", got, want)
	}
}

func names(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Book.Name
	}
	return out
}

func TestSearch_CloseMatch(t *testing.T) {
	t.Parallel()

	c := catalog.New("test.xlsx", []catalog.Book{
		{Name: "Physics Vol 1", Author: "A. Kumar", Edition: "3rd", DownloadURL: "http://x/1"},
	})
	m := NewMatcher(c)

	results := m.Search("Physics Vol1", DefaultLimit)
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}
	r := results[0]
	if r.Book.Name != "Physics Vol 1" || r.Book.Author != "A. Kumar" || r.Book.Edition != "3rd" {
		t.Errorf("Book = %+v, want the full Physics Vol 1 record", r.Book)
	}
	if r.Score != 96 || r.Position != 0 {
		t.Errorf("Score, Position = %d, %d; want 96, 0", r.Score, r.Position)
	}
}

func TestSearch_ThresholdOnWeightedScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query, title string
		found        bool
	}{
		{"geography", "Geometry", true},
		{"computer", "commerce", true},
		{"economics", "Ecology", false},
		{"physics", "Psychology", false},
	}
	for _, tt := range tests {
		got := NewMatcher(newCatalog(tt.title)).Search(tt.query, DefaultLimit)
		if found := len(got) == 1; found != tt.found {
			t.Errorf("Search(%q) in {%q}: found = %v, want %v", tt.query, tt.title, found, tt.found)
		}
	}
}

func TestSearch_Unrelated(t *testing.T) {
	t.Parallel()

	m := NewMatcher(newCatalog("Chemistry Basics"))
	checkNames(t, m.Search("xyzzy unrelated", DefaultLimit))
}

func TestSearch_EmptyInputs(t *testing.T) {
	t.Parallel()

	catalogs := map[string]*catalog.Catalog{
		"empty":       newCatalog(),
		"unavailable": catalog.Unavailable("books.xlsx", fmt.Errorf("gone")),
		"nil":         nil,
	}
	for name, c := range catalogs {
		if got := NewMatcher(c).Search("physics", 3); got != nil {
			t.Errorf("%s catalog: results = %v, want none", name, got)
		}
	}

	m := NewMatcher(newCatalog("Physics"))
	for _, q := range []string{"", "   ", "?!"} {
		if got := m.Search(q, 3); got != nil {
			t.Errorf("Search(%q) = %v, want none", q, got)
		}
	}
}

func TestSearch_LimitAndOrder(t *testing.T) {
	t.Parallel()

	scores := map[string]int{"a": 91, "b": 99, "c": 95, "d": 93, "e": 97}
	m := NewMatcher(newCatalog("A", "B", "C", "D", "E"), WithScorer(fixedScorer(scores)))

	results := m.Search("anything", 3)
	checkNames(t, results, "B", "E", "C")
	for i, want := range []int{99, 97, 95} {
		if i < len(results) && results[i].Score != want {
			t.Errorf("results[%d].Score = %d, want %d", i, results[i].Score, want)
		}
	}
}

func TestSearch_RealScorerLimit(t *testing.T) {
	t.Parallel()

	// All five normalise to "physics" and score 100.
	m := NewMatcher(newCatalog("Physics", "PHYSICS", "physics", "Physics.", "Physics?"))

	results := m.Search("physics", 3)
	checkNames(t, results, "Physics", "PHYSICS", "physics")
	for _, r := range results {
		if r.Score != 100 {
			t.Errorf("%s scored %d, want 100", r.Book.Name, r.Score)
		}
	}
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	t.Parallel()

	scores := map[string]int{"fifty": 50, "fifty one": 51, "forty": 40}
	m := NewMatcher(newCatalog("Fifty", "Fifty One", "Forty"), WithScorer(fixedScorer(scores)))

	checkNames(t, m.Search("q", 3), "Fifty One")
}

func TestSearch_ShortlistBeforeThreshold(t *testing.T) {
	t.Parallel()

	scores := map[string]int{"a": 80, "b": 70, "c": 45, "d": 60}
	m := NewMatcher(newCatalog("A", "B", "C", "D"), WithScorer(fixedScorer(scores)))

	// D scores 60 but falls outside a shortlist of 2.
	checkNames(t, m.Search("q", 2), "A", "B")
}

func TestSearch_CustomThreshold(t *testing.T) {
	t.Parallel()

	scores := map[string]int{"a": 80, "b": 70}
	m := NewMatcher(newCatalog("A", "B"), WithScorer(fixedScorer(scores)), WithThreshold(75))

	checkNames(t, m.Search("q", 3), "A")
}

func TestSearch_TiesKeepCatalogOrder(t *testing.T) {
	t.Parallel()

	scores := map[string]int{"first": 90, "second": 90, "third": 90, "fourth": 95}
	m := NewMatcher(newCatalog("First", "Second", "Third", "Fourth"), WithScorer(fixedScorer(scores)))

	results := m.Search("q", 3)
	checkNames(t, results, "Fourth", "First", "Second")
	for i, want := range []int{3, 0, 1} {
		if i < len(results) && results[i].Position != want {
			t.Errorf("results[%d].Position = %d, want %d", i, results[i].Position, want)
		}
	}
}

func TestSearch_DuplicateTitlesResolveToFirst(t *testing.T) {
	t.Parallel()

	c := catalog.New("test.xlsx", []catalog.Book{
		{Name: "Physics", Edition: "1st", DownloadURL: "http://x/1"},
		{Name: "Physics", Edition: "2nd", DownloadURL: "http://x/2"},
		{Name: "Chemistry", Edition: "1st", DownloadURL: "http://x/3"},
	})
	m := NewMatcher(c)
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}

	results := m.Search("physics", 3)
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}
	if results[0].Book.Edition != "1st" {
		t.Errorf("Edition = %q, want the first record", results[0].Book.Edition)
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	t.Parallel()

	m := NewMatcher(newCatalog("Physics", "PHYSICS", "physics", "Physics."))
	if got := len(m.Search("physics", 0)); got != DefaultLimit {
		t.Errorf("len = %d, want %d", got, DefaultLimit)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	t.Parallel()

	m := NewMatcher(newCatalog("Organic Chemistry", "Inorganic Chemistry", "Physical Chemistry", "Chemistry Basics"))
	first := m.Search("chemistry", 3)
	for range 10 {
		if got := m.Search("chemistry", 3); !slices.Equal(got, first) {
			t.Fatalf("Search = %v, want %v", got, first)
		}
	}
}

func TestSearch_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewMatcher(newCatalog("Physics Vol 1", "Physics Vol 2", "Chemistry Basics"))
	want := m.Search("physics", 3)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if got := m.Search("physics", 3); !slices.Equal(got, want) {
				t.Errorf("Search = %v, want %v", got, want)
			}
		})
	}
	wg.Wait()
}

func TestBooks(t *testing.T) {
	t.Parallel()

	m := NewMatcher(newCatalog("Physics Vol 1", "Chemistry Basics"))
	books := m.Books("Physics Vol1", 3)
	if len(books) != 1 || books[0].Name != "Physics Vol 1" {
		t.Errorf("Books = %+v, want only Physics Vol 1", books)
	}
	if got := m.Books("xyzzy unrelated", 3); got != nil {
		t.Errorf("Books = %+v, want nil", got)
	}
}

func TestSearch_RecordsMetrics(t *testing.T) {
	t.Parallel()

	met := metrics.New(prometheus.NewRegistry())
	m := NewMatcher(newCatalog("Physics Vol 1"), WithMetrics(met))

	m.Search("Physics Vol1", 3)
	m.Search("xyzzy unrelated", 3)
	m.Search("", 3)

	for _, outcome := range []string{metrics.SearchHit, metrics.SearchMiss, metrics.SearchEmptyQuery} {
		if got := testutil.ToFloat64(met.SearchTotal.WithLabelValues(outcome)); got != 1 {
			t.Errorf("%s searches = %v, want 1", outcome, got)
		}
	}
}
