// Package network holds the graph transformations behind the viewer: weight
// filtering, component colouring, neighbourhoods and grid ordering.
package network

import "github.com/vanshika/netviz/internal/domain"

// Filter returns the subgraph induced by the edges whose weight is at least
// threshold. Only endpoints of kept edges survive, so nodes that were isolated
// in g are always dropped. Edges keep their input order and nodes appear in
// the order they are first referenced by a kept edge.
//
// Endpoints missing from g.Nodes are synthesised with weight 0.
func Filter(g domain.Graph, threshold float64) domain.Graph {
	index := g.NodeIndex()
	out := domain.Graph{}
	seen := make(map[string]struct{})

	addNode := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		if i, ok := index[id]; ok {
			out.Nodes = append(out.Nodes, g.Nodes[i])
			return
		}
		out.Nodes = append(out.Nodes, domain.Node{ID: id})
	}

	for _, e := range g.Edges {
		if e.Weight < threshold {
			continue
		}
		out.Edges = append(out.Edges, e)
		addNode(e.Source)
		addNode(e.Target)
	}

	return out
}
