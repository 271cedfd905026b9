package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.UpdatesTotal == nil || m.UpdateDurationSeconds == nil {
		t.Error("update metrics are nil")
	}
	if m.SearchTotal == nil || m.SearchDurationSeconds == nil || m.SearchResults == nil {
		t.Error("search metrics are nil")
	}
	if m.SendTotal == nil {
		t.Error("SendTotal is nil")
	}
	if m.CatalogBooks == nil || m.CatalogLoadTotal == nil {
		t.Error("catalog metrics are nil")
	}
}

func TestRecordUpdate(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordUpdate("telegram", "text", "success", 0.2)
	m.RecordUpdate("telegram", "text", "success", 0.1)
	m.RecordUpdate("line", "follow", "error", 0.3)

	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("telegram", "text", "success")); got != 2 {
		t.Errorf("telegram/text/success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("line", "follow", "error")); got != 1 {
		t.Errorf("line/follow/error = %v, want 1", got)
	}
}

func TestRecordSearch(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordSearch(SearchHit, 3, 0.001)
	m.RecordSearch(SearchMiss, 0, 0.001)
	m.RecordSearch(SearchMiss, 0, 0.002)

	if got := testutil.ToFloat64(m.SearchTotal.WithLabelValues(SearchHit)); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SearchTotal.WithLabelValues(SearchMiss)); got != 2 {
		t.Errorf("miss = %v, want 2", got)
	}
}

func TestRecordSend(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordSend("telegram", "photo", "error")

	if got := testutil.ToFloat64(m.SendTotal.WithLabelValues("telegram", "photo", "error")); got != 1 {
		t.Errorf("send counter = %v, want 1", got)
	}
}

func TestRecordCatalogLoad(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordCatalogLoad("loaded", 42)

	if got := testutil.ToFloat64(m.CatalogBooks); got != 42 {
		t.Errorf("catalog books = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.CatalogLoadTotal.WithLabelValues("loaded")); got != 1 {
		t.Errorf("load counter = %v, want 1", got)
	}

	m.RecordCatalogLoad("unavailable", 0)
	if got := testutil.ToFloat64(m.CatalogBooks); got != 0 {
		t.Errorf("catalog books after failure = %v, want 0", got)
	}
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordUpdate("telegram", "text", "success", 0)
	m.RecordSearch(SearchHit, 1, 0)
	m.RecordSend("telegram", "text", "success")
	m.RecordCatalogLoad("loaded", 1)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(registry)
}
