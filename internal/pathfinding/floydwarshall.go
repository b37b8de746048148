package pathfinding

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNegativeCycles indicates that a cycle with negative total cost reaches some vertex,
// so no shortest path is well defined.
var ErrNegativeCycles = errors.New("negative cycles detected")

// ShortestPaths returns the minimum-cost path for every reachable ordered pair of vertices.
// Parallel edges are reduced to the cheapest one first. Every vertex touched by an edge gets
// a zero-cost empty self path; a self-loop edge only matters when its cost is negative, which
// is itself a negative cycle. When a negative cycle reaches any vertex the whole computation
// fails with ErrNegativeCycles.
func ShortestPaths(edges []Edge) (map[Pair]Path, error) {
	return floydWarshall(UniqueEdges(edges, PreferMin))
}

// floydWarshall runs the k -> i -> j relaxation over a graph without parallel edges.
// The loop order is fixed; relaxation only happens on strict improvement. Costs only
// decrease, so the first negative diagonal cell already proves a negative cycle and the
// search stops there, before paths through the cycle can grow.
func floydWarshall(edges []Edge) (map[Pair]Path, error) {
	vertices := make([]int, 0, 2*len(edges))
	for _, e := range edges {
		vertices = append(vertices, e.Pair.Source, e.Pair.Target)
	}
	slices.Sort(vertices)
	vertices = slices.Compact(vertices)

	n := len(vertices)
	pos := make(map[int]int, n)
	for i, v := range vertices {
		pos[v] = i
	}
	negativeCycle := func(i int) error {
		return fmt.Errorf("%w: reaching vertex %d", ErrNegativeCycles, vertices[i])
	}

	// Row-major n*n matrix; reach marks the cells holding a known path.
	dist := make([]Path, n*n)
	reach := make([]bool, n*n)
	for i := range n {
		reach[i*n+i] = true
	}
	for _, e := range edges {
		if e.Pair.Source == e.Pair.Target {
			if e.Cost < 0 {
				return nil, negativeCycle(pos[e.Pair.Source])
			}
			continue
		}
		cell := pos[e.Pair.Source]*n + pos[e.Pair.Target]
		var p Path
		p.add(e)
		dist[cell] = p
		reach[cell] = true
	}

	for k := range n {
		for i := range n {
			ik := i*n + k
			if !reach[ik] {
				continue
			}
			for j := range n {
				kj := k*n + j
				if !reach[kj] {
					continue
				}
				ij := i*n + j
				cand := dist[ik].TotalCost + dist[kj].TotalCost
				if reach[ij] && !(cand < dist[ij].TotalCost) {
					continue
				}
				if i == j && cand < 0 {
					return nil, negativeCycle(i)
				}
				joined := make([]Edge, 0, len(dist[ik].Edges)+len(dist[kj].Edges))
				joined = append(joined, dist[ik].Edges...)
				joined = append(joined, dist[kj].Edges...)
				dist[ij] = Path{TotalCost: cand, Edges: joined}
				reach[ij] = true
			}
		}
	}

	paths := make(map[Pair]Path, n)
	for i := range n {
		for j := range n {
			if reach[i*n+j] {
				paths[Pair{Source: vertices[i], Target: vertices[j]}] = dist[i*n+j]
			}
		}
	}
	return paths, nil
}

// SortedPairs returns the keys of a path table in (source, target) order.
func SortedPairs(paths map[Pair]Path) []Pair {
	pairs := make([]Pair, 0, len(paths))
	for p := range paths {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, Pair.Compare)
	return pairs
}
