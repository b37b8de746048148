// Package oracle runs one best-path recomputation: fetch monitored prices, compute the table,
// and persist the paths whose price moved beyond the tolerance.
package oracle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mtlprog/bestpath/internal/domain"
)

// PairLister lists the provider pairs to fetch.
type PairLister interface {
	List(ctx context.Context) ([]domain.ProviderPair, error)
}

// PriceFetcher fetches the current price of a provider pair.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, pp domain.ProviderPair) (domain.Amount, error)
}

// PathStore reads and writes the persisted best-path table.
type PathStore interface {
	List(ctx context.Context) ([]domain.StoredPath, error)
	Apply(ctx context.Context, changes []domain.PathChange) error
}

// Recorder receives cycle statistics.
type Recorder interface {
	FetchFailed(p domain.Provider)
	SetPaths(n int)
	AddChanges(n int)
}

// Result summarizes one recomputation.
type Result struct {
	Monitored int                 `json:"monitored"`
	Fetched   int                 `json:"fetched"`
	Paths     int                 `json:"paths"`
	Changes   []domain.PathChange `json:"changes"`
}

// Service computes and stores best paths.
type Service struct {
	pairs     PairLister
	prices    PriceFetcher
	calc      domain.Calculator
	store     PathStore
	metrics   Recorder
	tolerance uint64
}

// NewService creates a new oracle Service. tolerance is in parts per million.
func NewService(pairs PairLister, prices PriceFetcher, calc domain.Calculator, store PathStore, metrics Recorder, tolerance uint64) *Service {
	return &Service{
		pairs:     pairs,
		prices:    prices,
		calc:      calc,
		store:     store,
		metrics:   metrics,
		tolerance: tolerance,
	}
}

// Update runs one cycle. A calculation error aborts the cycle before anything is written;
// individual price fetch failures are logged and skipped.
func (s *Service) Update(ctx context.Context) (Result, error) {
	var res Result

	pairs, err := s.pairs.List(ctx)
	if err != nil {
		return res, fmt.Errorf("listing monitored pairs: %w", err)
	}
	res.Monitored = len(pairs)
	if len(pairs) == 0 {
		slog.Info("oracle: no monitored pairs")
		return res, nil
	}

	observations := make([]domain.Observation, 0, len(pairs))
	for _, pp := range pairs {
		price, err := s.prices.FetchPrice(ctx, pp)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			slog.Warn("oracle: price fetch failed",
				"source", pp.Pair.Source, "target", pp.Pair.Target, "provider", pp.Provider, "error", err)
			s.metrics.FetchFailed(pp.Provider)
			continue
		}
		observations = append(observations, domain.Observation{ProviderPair: pp, Price: price})
	}
	res.Fetched = len(observations)
	if len(observations) == 0 {
		slog.Warn("oracle: no prices fetched", "monitored", len(pairs))
		return res, nil
	}

	table, err := s.calc.Calculate(observations)
	if err != nil {
		return res, fmt.Errorf("calculating best paths: %w", err)
	}
	res.Paths = table.Len()
	s.metrics.SetPaths(table.Len())

	stored, err := s.store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("loading stored best paths: %w", err)
	}

	changes := Diff(stored, table, s.tolerance)
	if len(changes) == 0 {
		slog.Info("oracle: no price changes breached tolerance", "paths", table.Len())
		return res, nil
	}

	if err := s.store.Apply(ctx, changes); err != nil {
		return res, fmt.Errorf("storing best path changes: %w", err)
	}
	s.metrics.AddChanges(len(changes))
	res.Changes = changes

	slog.Info("oracle: best paths updated", "changes", len(changes), "paths", table.Len())
	return res, nil
}

// Diff returns the paths of table that are new or whose total cost moved by more than
// tolerance parts per million from the stored value. Stored pairs missing from table are kept.
func Diff(stored []domain.StoredPath, table domain.PathTable, tolerance uint64) []domain.PathChange {
	byPair := lo.KeyBy(stored, func(p domain.StoredPath) domain.Pair { return p.Pair })

	var changes []domain.PathChange
	for _, e := range table.Entries() {
		prev, ok := byPair[e.Pair]
		if ok && !domain.BreachesTolerance(prev.Path.TotalCost, e.Path.TotalCost, tolerance) {
			slog.Debug("oracle: change within tolerance",
				"source", e.Pair.Source, "target", e.Pair.Target,
				"old", prev.Path.TotalCost, "new", e.Path.TotalCost)
			continue
		}
		changes = append(changes, domain.PathChange{Pair: e.Pair, Path: e.Path})
	}

	for _, p := range stored {
		if _, ok := table.Get(p.Pair); !ok {
			slog.Debug("oracle: no price fetched, keeping stored path", "source", p.Pair.Source, "target", p.Pair.Target)
		}
	}
	return changes
}
