package bestpath

import (
	"cmp"
	"slices"
)

// Pair is an ordered source/target currency pair.
type Pair[C cmp.Ordered] struct {
	Source C `json:"source"`
	Target C `json:"target"`
}

// Compare orders pairs by source, then target.
func (p Pair[C]) Compare(other Pair[C]) int {
	if c := cmp.Compare(p.Source, other.Source); c != 0 {
		return c
	}
	return cmp.Compare(p.Target, other.Target)
}

// ProviderPair is a currency pair as quoted by one price provider.
type ProviderPair[C, P cmp.Ordered] struct {
	Pair     Pair[C] `json:"pair"`
	Provider P       `json:"provider"`
}

// Compare orders provider pairs by pair, then provider.
func (pp ProviderPair[C, P]) Compare(other ProviderPair[C, P]) int {
	if c := pp.Pair.Compare(other.Pair); c != 0 {
		return c
	}
	return cmp.Compare(pp.Provider, other.Provider)
}

// Observation is one price quoted for a provider pair.
type Observation[C, P cmp.Ordered, A any] struct {
	ProviderPair ProviderPair[C, P]
	Price        A
}

// PathStep is a single hop between two currencies via one provider.
type PathStep[C, P cmp.Ordered, A any] struct {
	Pair     Pair[C] `json:"pair"`
	Provider P       `json:"provider"`
	Cost     A       `json:"cost"`
}

// PricePath is the best conversion route for a pair. TotalCost is the product of the step
// costs; a path without steps carries the direct or identity price.
type PricePath[C, P cmp.Ordered, A any] struct {
	TotalCost A                  `json:"totalCost"`
	Steps     []PathStep[C, P, A] `json:"steps"`
}

// Entry is one row of a Table.
type Entry[C, P cmp.Ordered, A any] struct {
	Pair Pair[C]
	Path PricePath[C, P, A]
}

// Table is a best-path table ordered by pair.
type Table[C, P cmp.Ordered, A any] struct {
	entries []Entry[C, P, A]
}

// NewTable builds a table from entries in any order. When a pair repeats, the last entry wins.
func NewTable[C, P cmp.Ordered, A any](entries []Entry[C, P, A]) Table[C, P, A] {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry[C, P, A]) int { return a.Pair.Compare(b.Pair) })

	deduped := sorted[:0]
	for _, e := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Pair == e.Pair {
			deduped[n-1] = e
			continue
		}
		deduped = append(deduped, e)
	}
	return Table[C, P, A]{entries: deduped}
}

// Get returns the path stored for pair.
func (t Table[C, P, A]) Get(pair Pair[C]) (PricePath[C, P, A], bool) {
	i, found := slices.BinarySearchFunc(t.entries, pair, func(e Entry[C, P, A], p Pair[C]) int {
		return e.Pair.Compare(p)
	})
	if !found {
		return PricePath[C, P, A]{}, false
	}
	return t.entries[i].Path, true
}

// Entries returns the rows in pair order. The slice must not be modified.
func (t Table[C, P, A]) Entries() []Entry[C, P, A] {
	return t.entries
}

// Len returns the number of rows.
func (t Table[C, P, A]) Len() int {
	return len(t.entries)
}
