package pathfinding

import (
	"slices"
)

// Preference selects which of several parallel edges survives deduplication.
type Preference int

const (
	// PreferMin keeps the cheapest edge per pair.
	PreferMin Preference = iota
	// PreferMax keeps the most expensive edge per pair.
	PreferMax
)

// better reports whether candidate is strictly more favorable than current.
func (p Preference) better(candidate, current float64) bool {
	if p == PreferMax {
		return candidate > current
	}
	return candidate < current
}

// UniqueEdges collapses parallel edges so exactly one edge per ordered pair remains.
// Edges are scanned left to right and an edge only replaces the kept one when it is strictly
// more favorable, so ties keep the first edge seen. The result is ordered by pair.
func UniqueEdges(edges []Edge, pref Preference) []Edge {
	byPair := make(map[Pair]Edge, len(edges))
	for _, e := range edges {
		kept, ok := byPair[e.Pair]
		if !ok || pref.better(e.Cost, kept.Cost) {
			byPair[e.Pair] = e
		}
	}

	unique := make([]Edge, 0, len(byPair))
	for _, e := range byPair {
		unique = append(unique, e)
	}
	slices.SortFunc(unique, func(a, b Edge) int { return a.Pair.Compare(b.Pair) })
	return unique
}
