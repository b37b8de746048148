package bestpath

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/mtlprog/bestpath/internal/pathfinding"
)

// FloydWarshall maximizes the compounded rate between every pair of currencies.
// Currencies and providers are mapped to dense indices in sorted order, so the result only
// depends on the observations and the order of duplicates among them.
type FloydWarshall[C, P cmp.Ordered, A FixedPoint[A]] struct{}

// Calculate implements Calculator.
func (FloydWarshall[C, P, A]) Calculate(observations []Observation[C, P, A]) (Table[C, P, A], error) {
	currencies := lo.Uniq(lo.FlatMap(observations, func(o Observation[C, P, A], _ int) []C {
		return []C{o.ProviderPair.Pair.Source, o.ProviderPair.Pair.Target}
	}))
	slices.Sort(currencies)
	providers := lo.Uniq(lo.Map(observations, func(o Observation[C, P, A], _ int) P {
		return o.ProviderPair.Provider
	}))
	slices.Sort(providers)

	currencyIdx := indexOf(currencies)
	providerIdx := indexOf(providers)

	edges := make([]pathfinding.Edge, 0, len(observations))
	for _, o := range observations {
		cost, err := amountToFloat(o.Price)
		if err != nil {
			return Table[C, P, A]{}, fmt.Errorf("price of %v: %w", o.ProviderPair, err)
		}
		if cost <= 0 {
			return Table[C, P, A]{}, fmt.Errorf("price of %v: %w: rate must be positive", o.ProviderPair, ErrConversion)
		}
		edges = append(edges, pathfinding.Edge{
			Pair: pathfinding.Pair{
				Source: currencyIdx[o.ProviderPair.Pair.Source],
				Target: currencyIdx[o.ProviderPair.Pair.Target],
			},
			Provider: providerIdx[o.ProviderPair.Provider],
			Cost:     cost,
		})
	}

	paths, err := pathfinding.LongestPathsMult(edges)
	if err != nil {
		return Table[C, P, A]{}, err
	}

	entries := make([]Entry[C, P, A], 0, len(paths))
	for _, idx := range pathfinding.SortedPairs(paths) {
		path := paths[idx]
		pair := Pair[C]{Source: currencies[idx.Source], Target: currencies[idx.Target]}

		total, err := floatToAmount[A](path.TotalCost)
		if err != nil {
			return Table[C, P, A]{}, fmt.Errorf("total cost of %v: %w", pair, err)
		}
		steps := make([]PathStep[C, P, A], len(path.Edges))
		for i, e := range path.Edges {
			cost, err := floatToAmount[A](e.Cost)
			if err != nil {
				return Table[C, P, A]{}, fmt.Errorf("step cost of %v: %w", pair, err)
			}
			steps[i] = PathStep[C, P, A]{
				Pair:     Pair[C]{Source: currencies[e.Pair.Source], Target: currencies[e.Pair.Target]},
				Provider: providers[e.Provider],
				Cost:     cost,
			}
		}
		entries = append(entries, Entry[C, P, A]{Pair: pair, Path: PricePath[C, P, A]{TotalCost: total, Steps: steps}})
	}
	return NewTable(entries), nil
}

func indexOf[T comparable](values []T) map[T]int {
	idx := make(map[T]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
