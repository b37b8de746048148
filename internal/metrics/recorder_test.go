package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mtlprog/bestpath/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveCycle(OutcomeChanged, 20*time.Millisecond)
	r.ObserveCycle(OutcomeChanged, 30*time.Millisecond)
	r.ObserveCycle(OutcomeFailed, time.Millisecond)
	r.ObserveCycle(OutcomeSkipped, 0)
	r.SetPaths(25)
	r.AddChanges(3)
	r.AddChanges(2)
	r.FetchFailed(domain.CryptoCompare)

	if got := testutil.ToFloat64(r.recomputations.WithLabelValues(OutcomeChanged)); got != 2 {
		t.Errorf("changed cycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.recomputations.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("failed cycles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.paths); got != 25 {
		t.Errorf("paths = %v, want 25", got)
	}
	if got := testutil.ToFloat64(r.changes); got != 5 {
		t.Errorf("changes = %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.fetchErrors.WithLabelValues("CRYPTOCOMPARE")); got != 1 {
		t.Errorf("fetch errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(r.recomputations.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Errorf("skipped cycles = %v, want 1", got)
	}
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	r.SetPaths(4)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "bestpath_paths 4") {
		t.Errorf("exposition missing bestpath_paths gauge:\n%s", body)
	}
}
