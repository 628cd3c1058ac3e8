package domain

import "errors"

// DefaultEdgeWeight is applied to edges that arrive without a weight.
const DefaultEdgeWeight = 1.0

var (
	// ErrMalformedDataset indicates a dataset payload could not be decoded.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrDatasetNotFound indicates the requested dataset is not known to a source.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrNodeNotFound indicates a node id is not part of the graph.
	ErrNodeNotFound = errors.New("node not found")
)

// Node is a tag in the network. Identity is the ID.
type Node struct {
	ID     string
	Weight float64
}

// Edge connects two nodes. Edges are treated as undirected.
type Edge struct {
	Source string
	Target string
	Weight float64
}

// ID returns the identifier used by the viewer for the edge.
func (e Edge) ID() string {
	return e.Source + "-" + e.Target
}

// Other returns the endpoint opposite to id, and false if id is not an endpoint.
func (e Edge) Other(id string) (string, bool) {
	switch id {
	case e.Source:
		return e.Target, true
	case e.Target:
		return e.Source, true
	default:
		return "", false
	}
}

// Graph is an ordered node and edge list. Edge endpoints are not required to
// reference nodes in Nodes.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// NodeByID returns the node with the given id.
func (g Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIndex maps node ids to their position in Nodes. When ids repeat the
// first occurrence wins.
func (g Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, ok := idx[n.ID]; !ok {
			idx[n.ID] = i
		}
	}
	return idx
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	return Graph{
		Nodes: append([]Node(nil), g.Nodes...),
		Edges: append([]Edge(nil), g.Edges...),
	}
}

// IsEmpty reports whether the graph has neither nodes nor edges.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// MaxEdgeWeight returns the largest edge weight, or 0 for a graph without edges.
func (g Graph) MaxEdgeWeight() float64 {
	var max float64
	for i, e := range g.Edges {
		if i == 0 || e.Weight > max {
			max = e.Weight
		}
	}
	return max
}
