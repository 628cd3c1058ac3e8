package network

import (
	"fmt"

	"github.com/vanshika/netviz/internal/domain"
)

// Neighborhood is the closed neighbourhood of a node: the node itself, every
// adjacent node and every incident edge. It is what the viewer highlights when
// a node is tapped.
type Neighborhood struct {
	Center    string
	Neighbors []string
	Edges     []domain.Edge
}

// Contains reports whether id is the centre or one of its neighbours.
func (n Neighborhood) Contains(id string) bool {
	if id == n.Center {
		return true
	}
	for _, nb := range n.Neighbors {
		if nb == id {
			return true
		}
	}
	return false
}

// NeighborInfo describes one adjacent node in the node details panel.
type NeighborInfo struct {
	ID         string  `json:"id"`
	EdgeWeight float64 `json:"edge_weight"`
}

// NodeInfo is the content of the node details panel.
type NodeInfo struct {
	ID          string         `json:"id"`
	Weight      float64        `json:"weight"`
	Connections int            `json:"connections"`
	Neighbors   []NeighborInfo `json:"neighbors"`
}

// NeighborhoodOf returns the closed neighbourhood of id in g. Neighbours are
// listed in the order of the edges that reach them.
func NeighborhoodOf(g domain.Graph, id string) (Neighborhood, error) {
	if !hasNode(g, id) {
		return Neighborhood{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	hood := Neighborhood{Center: id}
	seen := map[string]struct{}{id: {}}
	for _, e := range g.Edges {
		other, ok := e.Other(id)
		if !ok {
			continue
		}
		hood.Edges = append(hood.Edges, e)
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		hood.Neighbors = append(hood.Neighbors, other)
	}
	return hood, nil
}

// Info builds the details panel for id. Each neighbour carries the weight of
// the first edge joining it to id.
func Info(g domain.Graph, id string) (NodeInfo, error) {
	hood, err := NeighborhoodOf(g, id)
	if err != nil {
		return NodeInfo{}, err
	}

	node, _ := g.NodeByID(id)
	info := NodeInfo{
		ID:          id,
		Weight:      node.Weight,
		Connections: len(hood.Neighbors),
		Neighbors:   make([]NeighborInfo, 0, len(hood.Neighbors)),
	}
	for _, nb := range hood.Neighbors {
		for _, e := range hood.Edges {
			if other, _ := e.Other(id); other == nb {
				info.Neighbors = append(info.Neighbors, NeighborInfo{ID: nb, EdgeWeight: e.Weight})
				break
			}
		}
	}
	return info, nil
}

// hasNode accepts listed nodes as well as dangling edge endpoints.
func hasNode(g domain.Graph, id string) bool {
	if _, ok := g.NodeByID(id); ok {
		return true
	}
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			return true
		}
	}
	return false
}
