package network

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanshika/netviz/internal/domain"
)

// ErrEmptyPalette is returned when colouring is requested without colours.
var ErrEmptyPalette = errors.New("palette must contain at least one colour")

// DefaultPalette is cycled over connected components.
var DefaultPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEEAD", "#D4A5A5", "#9FA8DA", "#CE93D8",
}

// Components partitions g into connected components over the undirected
// adjacency implied by its edges. Nodes without edges form singleton
// components and dangling edge endpoints are included.
//
// Components are ordered by the position of their earliest member, where
// g.Nodes come first followed by dangling endpoints in edge order. Members
// within a component follow the same order.
func Components(g domain.Graph) [][]string {
	ids := make([]string, 0, len(g.Nodes))
	index := make(map[string]int64, len(g.Nodes))
	intern := func(id string) int64 {
		if i, ok := index[id]; ok {
			return i
		}
		i := int64(len(ids))
		index[id] = i
		ids = append(ids, id)
		return i
	}

	for _, n := range g.Nodes {
		intern(n.ID)
	}
	for _, e := range g.Edges {
		intern(e.Source)
		intern(e.Target)
	}

	ug := simple.NewUndirectedGraph()
	for i := range ids {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges {
		from, to := index[e.Source], index[e.Target]
		if from == to {
			// Self loops do not change connectivity and simple graphs reject them.
			continue
		}
		ug.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	raw := topo.ConnectedComponents(ug)
	members := make([][]int64, 0, len(raw))
	for _, cc := range raw {
		nodes := make([]int64, 0, len(cc))
		for _, n := range cc {
			nodes = append(nodes, n.ID())
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
		members = append(members, nodes)
	}
	sort.Slice(members, func(i, j int) bool { return members[i][0] < members[j][0] })

	out := make([][]string, 0, len(members))
	for _, cc := range members {
		names := make([]string, 0, len(cc))
		for _, id := range cc {
			names = append(names, ids[id])
		}
		out = append(out, names)
	}
	return out
}

// Colorize assigns palette[i mod len(palette)] to every node of component i,
// with components ordered as by Components.
func Colorize(g domain.Graph, palette []string) (map[string]string, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	colors := make(map[string]string, len(g.Nodes))
	for i, cc := range Components(g) {
		color := palette[i%len(palette)]
		for _, id := range cc {
			colors[id] = color
		}
	}
	return colors, nil
}

// ComponentIndex maps each node id to the index of its component.
func ComponentIndex(g domain.Graph) map[string]int {
	out := make(map[string]int, len(g.Nodes))
	for i, cc := range Components(g) {
		for _, id := range cc {
			out[id] = i
		}
	}
	return out
}
