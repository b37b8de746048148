// Package provider fetches observed exchange rates from external price sources.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtlprog/bestpath/internal/domain"
)

var (
	// ErrUnknownProvider indicates a provider pair whose provider has no registered fetcher.
	ErrUnknownProvider = errors.New("unknown price provider")
	// ErrNoPrice indicates a response that carries no usable price for the requested pair.
	ErrNoPrice = errors.New("no price in response")
)

// PriceFetcher fetches the current rate of one currency pair from a single source.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, pair domain.Pair) (domain.Amount, error)
}

// Hub dispatches price requests to the fetcher of each provider.
type Hub struct {
	fetchers map[domain.Provider]PriceFetcher
}

// NewHub creates a Hub over the given fetchers.
func NewHub(fetchers map[domain.Provider]PriceFetcher) *Hub {
	return &Hub{fetchers: fetchers}
}

// FetchPrice fetches the rate of pp.Pair from pp.Provider.
func (h *Hub) FetchPrice(ctx context.Context, pp domain.ProviderPair) (domain.Amount, error) {
	f, ok := h.fetchers[pp.Provider]
	if !ok {
		return domain.Amount{}, fmt.Errorf("%w: %s", ErrUnknownProvider, pp.Provider)
	}
	price, err := f.FetchPrice(ctx, pp.Pair)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("fetching %s/%s from %s: %w", pp.Pair.Source, pp.Pair.Target, pp.Provider, err)
	}
	return price, nil
}
