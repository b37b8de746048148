package oracle

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/mtlprog/bestpath/internal/bestpath"
	"github.com/mtlprog/bestpath/internal/domain"
)

type mockPairs struct {
	pairs []domain.ProviderPair
	err   error
}

func (m *mockPairs) List(_ context.Context) ([]domain.ProviderPair, error) {
	return m.pairs, m.err
}

type mockPrices struct {
	prices map[domain.Pair]domain.Amount
	calls  int
}

func (m *mockPrices) FetchPrice(_ context.Context, pp domain.ProviderPair) (domain.Amount, error) {
	m.calls++
	p, ok := m.prices[pp.Pair]
	if !ok {
		return domain.Amount{}, errors.New("no quote")
	}
	return p, nil
}

type mockStore struct {
	stored  []domain.StoredPath
	applied [][]domain.PathChange
	err     error
}

func (m *mockStore) List(_ context.Context) ([]domain.StoredPath, error) {
	return m.stored, nil
}

func (m *mockStore) Apply(_ context.Context, changes []domain.PathChange) error {
	if m.err != nil {
		return m.err
	}
	m.applied = append(m.applied, changes)
	return nil
}

type mockRecorder struct {
	fetchFailed []domain.Provider
	paths       int
	changes     int
}

func (m *mockRecorder) FetchFailed(p domain.Provider) { m.fetchFailed = append(m.fetchFailed, p) }
func (m *mockRecorder) SetPaths(n int)                { m.paths = n }
func (m *mockRecorder) AddChanges(n int)              { m.changes += n }

func units(n uint64) domain.Amount {
	return domain.AmountFromUint64(n * bestpath.Precision)
}

func cc(source, target domain.Currency) domain.ProviderPair {
	return domain.ProviderPair{Pair: domain.Pair{Source: source, Target: target}, Provider: domain.CryptoCompare}
}

func floydWarshall(t *testing.T) domain.Calculator {
	t.Helper()
	calc, ok := domain.NewCalculator(domain.CalculatorFloydWarshall)
	if !ok {
		t.Fatal("floyd-warshall calculator not registered")
	}
	return calc
}

func changedPairs(changes []domain.PathChange) []domain.Pair {
	pairs := make([]domain.Pair, len(changes))
	for i, c := range changes {
		pairs[i] = c.Pair
	}
	return pairs
}

func TestUpdateStoresFullTable(t *testing.T) {
	pairs := &mockPairs{pairs: []domain.ProviderPair{cc("A", "B"), cc("B", "C")}}
	prices := &mockPrices{prices: map[domain.Pair]domain.Amount{
		{Source: "A", Target: "B"}: units(2),
		{Source: "B", Target: "C"}: units(4),
	}}
	store := &mockStore{}
	rec := &mockRecorder{}

	svc := NewService(pairs, prices, floydWarshall(t), store, rec, 1000)
	res, err := svc.Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A->A, A->B, A->C, B->B, B->C, C->C
	if res.Paths != 6 || rec.paths != 6 {
		t.Errorf("paths = %d (recorded %d), want 6", res.Paths, rec.paths)
	}
	if len(store.applied) != 1 || len(store.applied[0]) != 6 {
		t.Fatalf("applied = %v, want one batch of 6", store.applied)
	}
	if rec.changes != 6 {
		t.Errorf("recorded changes = %d, want 6", rec.changes)
	}
	for _, c := range res.Changes {
		if c.Pair == (domain.Pair{Source: "A", Target: "C"}) && c.Path.TotalCost != units(8) {
			t.Errorf("A->C total = %s, want 8", c.Path.TotalCost)
		}
	}
}

func TestUpdateSkipsFailedFetches(t *testing.T) {
	pairs := &mockPairs{pairs: []domain.ProviderPair{cc("A", "B"), cc("X", "Y")}}
	prices := &mockPrices{prices: map[domain.Pair]domain.Amount{{Source: "A", Target: "B"}: units(3)}}
	store := &mockStore{}
	rec := &mockRecorder{}

	res, err := NewService(pairs, prices, floydWarshall(t), store, rec, 0).Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Monitored != 2 || res.Fetched != 1 {
		t.Errorf("monitored/fetched = %d/%d, want 2/1", res.Monitored, res.Fetched)
	}
	if !slices.Equal(rec.fetchFailed, []domain.Provider{domain.CryptoCompare}) {
		t.Errorf("fetch failures = %v", rec.fetchFailed)
	}
	if len(store.applied) != 1 {
		t.Errorf("expected one write, got %d", len(store.applied))
	}
}

func TestUpdateNoMonitoredPairs(t *testing.T) {
	prices := &mockPrices{}
	store := &mockStore{}
	res, err := NewService(&mockPairs{}, prices, floydWarshall(t), store, &mockRecorder{}, 0).Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Monitored != 0 || prices.calls != 0 || len(store.applied) != 0 {
		t.Errorf("expected a no-op cycle, got %+v", res)
	}
}

func TestUpdateNoPricesFetched(t *testing.T) {
	store := &mockStore{}
	_, err := NewService(&mockPairs{pairs: []domain.ProviderPair{cc("A", "B")}}, &mockPrices{}, floydWarshall(t), store, &mockRecorder{}, 0).
		Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.applied) != 0 {
		t.Error("nothing should be written without prices")
	}
}

func TestUpdateNegativeCycleWritesNothing(t *testing.T) {
	pairs := &mockPairs{pairs: []domain.ProviderPair{cc("A", "B"), cc("B", "A")}}
	prices := &mockPrices{prices: map[domain.Pair]domain.Amount{
		{Source: "A", Target: "B"}: units(2),
		{Source: "B", Target: "A"}: units(1),
	}}
	store := &mockStore{}

	_, err := NewService(pairs, prices, floydWarshall(t), store, &mockRecorder{}, 0).Update(context.Background())
	if !errors.Is(err, bestpath.ErrNegativeCycles) {
		t.Fatalf("expected ErrNegativeCycles, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Error("nothing should be written after a failed calculation")
	}
}

func TestUpdateWithinTolerance(t *testing.T) {
	ab := domain.Pair{Source: "A", Target: "B"}
	pairs := &mockPairs{pairs: []domain.ProviderPair{cc("A", "B")}}
	// 2.001 vs stored 2: 500 ppm.
	prices := &mockPrices{prices: map[domain.Pair]domain.Amount{ab: domain.AmountFromUint64(2_001_000_000_000)}}
	store := &mockStore{stored: []domain.StoredPath{{Pair: ab, Path: domain.PricePath{TotalCost: units(2)}}}}
	noop, _ := domain.NewCalculator(domain.CalculatorNoop)

	res, err := NewService(pairs, prices, noop, store, &mockRecorder{}, 1000).Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Changes) != 0 || len(store.applied) != 0 {
		t.Errorf("change within tolerance should be skipped, got %+v", res.Changes)
	}

	res, err = NewService(pairs, prices, noop, store, &mockRecorder{}, 100).Update(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Changes) != 1 || len(store.applied) != 1 {
		t.Errorf("change beyond tolerance should be written, got %+v", res.Changes)
	}
}

func TestUpdateStoreError(t *testing.T) {
	pairs := &mockPairs{pairs: []domain.ProviderPair{cc("A", "B")}}
	prices := &mockPrices{prices: map[domain.Pair]domain.Amount{{Source: "A", Target: "B"}: units(2)}}
	store := &mockStore{err: errors.New("tx aborted")}
	rec := &mockRecorder{}

	if _, err := NewService(pairs, prices, floydWarshall(t), store, rec, 0).Update(context.Background()); err == nil {
		t.Fatal("expected store error")
	}
	if rec.changes != 0 {
		t.Errorf("no changes should be recorded, got %d", rec.changes)
	}
}

func TestDiff(t *testing.T) {
	ab := domain.Pair{Source: "A", Target: "B"}
	ba := domain.Pair{Source: "B", Target: "A"}
	ac := domain.Pair{Source: "A", Target: "C"}
	zz := domain.Pair{Source: "Z", Target: "Z"}

	stored := []domain.StoredPath{
		{Pair: ab, Path: domain.PricePath{TotalCost: units(2)}},
		{Pair: ba, Path: domain.PricePath{TotalCost: domain.AmountFromUint64(500_000_000_000)}},
		{Pair: zz, Path: domain.PricePath{TotalCost: units(1)}},
	}
	table := bestpath.NewTable([]domain.PathEntry{
		{Pair: ab, Path: domain.PricePath{TotalCost: units(2)}},
		{Pair: ba, Path: domain.PricePath{TotalCost: domain.AmountFromUint64(400_000_000_000)}},
		{Pair: ac, Path: domain.PricePath{TotalCost: units(9)}},
	})

	got := changedPairs(Diff(stored, table, 1000))
	want := []domain.Pair{ac, ba}
	if !slices.Equal(got, want) {
		t.Errorf("changed pairs = %v, want %v", got, want)
	}
}
