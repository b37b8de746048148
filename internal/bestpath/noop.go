package bestpath

import "cmp"

// Noop echoes every observation as a direct path without steps. A later observation of the
// same pair replaces an earlier one. Self pairs are not added.
type Noop[C, P cmp.Ordered, A FixedPoint[A]] struct{}

// Calculate implements Calculator.
func (Noop[C, P, A]) Calculate(observations []Observation[C, P, A]) (Table[C, P, A], error) {
	entries := make([]Entry[C, P, A], len(observations))
	for i, o := range observations {
		entries[i] = Entry[C, P, A]{Pair: o.ProviderPair.Pair, Path: PricePath[C, P, A]{TotalCost: o.Price}}
	}
	return NewTable(entries), nil
}
