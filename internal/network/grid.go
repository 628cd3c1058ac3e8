package network

import (
	"math"
	"sort"

	"github.com/vanshika/netviz/internal/domain"
)

// Position is a node placement in layout coordinates.
type Position struct {
	ID  string  `json:"id"`
	Row int     `json:"row"`
	Col int     `json:"col"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// GridOrder sorts nodes for the grid layout: heaviest first, ties broken by
// total incident edge weight and then by id.
func GridOrder(g domain.Graph) []domain.Node {
	incident := make(map[string]float64, len(g.Nodes))
	for _, e := range g.Edges {
		incident[e.Source] += e.Weight
		if e.Target != e.Source {
			incident[e.Target] += e.Weight
		}
	}

	nodes := append([]domain.Node(nil), g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if ia, ib := incident[a.ID], incident[b.ID]; ia != ib {
			return ia > ib
		}
		return a.ID < b.ID
	})
	return nodes
}

// GridColumns returns the column count of a square-ish grid holding n nodes.
func GridColumns(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// GridPositions lays the nodes of g out row-major in GridOrder, spacing
// cells by spacing units.
func GridPositions(g domain.Graph, spacing float64) []Position {
	ordered := GridOrder(g)
	cols := GridColumns(len(ordered))
	out := make([]Position, 0, len(ordered))
	for i, n := range ordered {
		row, col := i/cols, i%cols
		out = append(out, Position{
			ID:  n.ID,
			Row: row,
			Col: col,
			X:   float64(col) * spacing,
			Y:   float64(row) * spacing,
		})
	}
	return out
}
