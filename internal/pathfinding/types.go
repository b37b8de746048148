// Package pathfinding implements all-pairs best path search over a graph whose vertices and
// providers are dense integer indices and whose edge costs are float64.
//
// Costs must never be NaN; the total order on Edge relies on it.
package pathfinding

import "cmp"

// Pair is an ordered (source, target) pair of vertex indices.
type Pair struct {
	Source int
	Target int
}

// Compare orders pairs by source, then target.
func (p Pair) Compare(other Pair) int {
	if c := cmp.Compare(p.Source, other.Source); c != 0 {
		return c
	}
	return cmp.Compare(p.Target, other.Target)
}

// Edge is a single observed cost between two vertices, quoted by one provider.
type Edge struct {
	Pair     Pair
	Provider int
	Cost     float64
}

// Compare orders edges lexicographically by (pair, provider, cost).
func (e Edge) Compare(other Edge) int {
	if c := e.Pair.Compare(other.Pair); c != 0 {
		return c
	}
	if c := cmp.Compare(e.Provider, other.Provider); c != 0 {
		return c
	}
	return cmp.Compare(e.Cost, other.Cost)
}

// Path is an ordered hop sequence with its accumulated cost.
type Path struct {
	TotalCost float64
	Edges     []Edge
}

// add appends an edge, summing its cost into the total.
func (p *Path) add(e Edge) {
	p.TotalCost += e.Cost
	p.Edges = append(p.Edges, e)
}

// Equal reports whether both paths carry the same cost and the same hops.
func (p Path) Equal(other Path) bool {
	if p.TotalCost != other.TotalCost || len(p.Edges) != len(other.Edges) {
		return false
	}
	for i := range p.Edges {
		if p.Edges[i] != other.Edges[i] {
			return false
		}
	}
	return true
}
