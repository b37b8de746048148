package pathfinding

import "math"

type providerPair struct {
	pair     Pair
	provider int
}

// LongestPathsMult returns, for every reachable ordered pair, the path maximizing the product
// of edge costs.
//
// Parallel edges are first reduced to the highest cost. Each cost w is then replaced by
// -log2(w), so maximizing a product becomes minimizing a sum, and ShortestPaths does the rest.
// Returned paths carry the original costs; TotalCost is recomputed as their product, with 1
// for the empty self path.
//
// All costs must be strictly positive.
func LongestPathsMult(edges []Edge) (map[Pair]Path, error) {
	unique := UniqueEdges(edges, PreferMax)

	original := make(map[providerPair]float64, len(unique))
	logEdges := make([]Edge, len(unique))
	for i, e := range unique {
		original[providerPair{pair: e.Pair, provider: e.Provider}] = e.Cost
		e.Cost = -math.Log2(e.Cost)
		logEdges[i] = e
	}

	shortest, err := ShortestPaths(logEdges)
	if err != nil {
		return nil, err
	}

	paths := make(map[Pair]Path, len(shortest))
	for pair, path := range shortest {
		restored := make([]Edge, len(path.Edges))
		total := 1.0
		for i, e := range path.Edges {
			e.Cost = original[providerPair{pair: e.Pair, provider: e.Provider}]
			total *= e.Cost
			restored[i] = e
		}
		paths[pair] = Path{TotalCost: total, Edges: restored}
	}
	return paths, nil
}
