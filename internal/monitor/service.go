// Package monitor manages the set of provider pairs whose prices are fetched each cycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/mtlprog/bestpath/internal/domain"
)

// ErrInvalidPair indicates an operation on a pair that cannot be monitored.
var ErrInvalidPair = errors.New("invalid monitored pair")

// Service applies add/delete operations to the monitored pair set.
type Service struct {
	repo Repository
}

// NewService creates a new monitor Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every monitored provider pair.
func (s *Service) List(ctx context.Context) ([]domain.ProviderPair, error) {
	return s.repo.List(ctx)
}

// Submit applies ops and returns those that changed the set, in submission order.
// When several ops target the same provider pair only the last one is applied.
func (s *Service) Submit(ctx context.Context, ops []domain.ProviderPairOperation) ([]domain.ProviderPairOperation, error) {
	for _, op := range ops {
		if err := validate(op); err != nil {
			return nil, err
		}
	}

	effective := make([]domain.ProviderPairOperation, 0, len(ops))
	for _, op := range lastPerPair(ops) {
		var (
			changed bool
			err     error
		)
		if op.Operation == domain.OperationAdd {
			changed, err = s.repo.Add(ctx, op.ProviderPair)
		} else {
			changed, err = s.repo.Remove(ctx, op.ProviderPair)
		}
		if err != nil {
			return effective, err
		}
		if !changed {
			continue
		}
		slog.Info("monitor: pair updated",
			"operation", op.Operation,
			"source", op.ProviderPair.Pair.Source,
			"target", op.ProviderPair.Pair.Target,
			"provider", op.ProviderPair.Provider)
		effective = append(effective, op)
	}
	return effective, nil
}

// lastPerPair keeps the last op per provider pair, preserving relative order.
func lastPerPair(ops []domain.ProviderPairOperation) []domain.ProviderPairOperation {
	rev := slices.Clone(ops)
	slices.Reverse(rev)
	rev = lo.UniqBy(rev, func(op domain.ProviderPairOperation) domain.ProviderPair {
		return op.ProviderPair
	})
	slices.Reverse(rev)
	return rev
}

func validate(op domain.ProviderPairOperation) error {
	pp := op.ProviderPair
	switch {
	case pp.Pair.Source == "" || pp.Pair.Target == "":
		return fmt.Errorf("%w: empty currency", ErrInvalidPair)
	case pp.Pair.Source == pp.Pair.Target:
		return fmt.Errorf("%w: %s to itself", ErrInvalidPair, pp.Pair.Source)
	case pp.Provider == "":
		return fmt.Errorf("%w: empty provider", ErrInvalidPair)
	case op.Operation != domain.OperationAdd && op.Operation != domain.OperationDel:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidPair, op.Operation)
	}
	return nil
}
