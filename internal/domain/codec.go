package domain

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// NodeData is the attribute block of a node as exchanged with the viewer.
type NodeData struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// EdgeData is the attribute block of an edge as exchanged with the viewer.
type EdgeData struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// WrappedNode is a node in the `{data: {...}}` element form.
type WrappedNode struct {
	Data NodeData `json:"data"`
}

// WrappedEdge is an edge in the `{data: {...}}` element form.
type WrappedEdge struct {
	Data EdgeData `json:"data"`
}

// WrappedGraph is the element form consumed by the browser viewer.
type WrappedGraph struct {
	Nodes []WrappedNode `json:"nodes"`
	Edges []WrappedEdge `json:"edges"`
}

type nodeFields struct {
	ID     string   `json:"id"`
	Weight *float64 `json:"weight"`
}

type edgeFields struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight *float64 `json:"weight"`
}

// wireNode accepts both `{data: {id, weight}}` and `{id, weight}`.
type wireNode struct {
	nodeFields
	Data *nodeFields `json:"data"`
}

type wireEdge struct {
	edgeFields
	Data *edgeFields `json:"data"`
}

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

// DecodeGraph parses a dataset in either the wrapped or the raw form. Forms may
// be mixed per element. Missing edge weights default to DefaultEdgeWeight and
// missing node weights to 0.
func DecodeGraph(data []byte) (Graph, error) {
	var wire wireGraph
	if err := json.Unmarshal(data, &wire); err != nil {
		return Graph{}, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	g := Graph{
		Nodes: make([]Node, 0, len(wire.Nodes)),
		Edges: make([]Edge, 0, len(wire.Edges)),
	}

	for i, wn := range wire.Nodes {
		fields := wn.nodeFields
		if wn.Data != nil {
			fields = *wn.Data
		}
		if fields.ID == "" {
			return Graph{}, fmt.Errorf("%w: nodes[%d]: id is required", ErrMalformedDataset, i)
		}
		node := Node{ID: fields.ID}
		if fields.Weight != nil {
			node.Weight = *fields.Weight
		}
		g.Nodes = append(g.Nodes, node)
	}

	for i, we := range wire.Edges {
		fields := we.edgeFields
		if we.Data != nil {
			fields = *we.Data
		}
		if fields.Source == "" || fields.Target == "" {
			return Graph{}, fmt.Errorf("%w: edges[%d]: source and target are required", ErrMalformedDataset, i)
		}
		edge := Edge{Source: fields.Source, Target: fields.Target, Weight: DefaultEdgeWeight}
		if fields.Weight != nil {
			edge.Weight = *fields.Weight
		}
		g.Edges = append(g.Edges, edge)
	}

	return g, nil
}

// ReadGraph decodes a dataset from r.
func ReadGraph(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Graph{}, fmt.Errorf("read dataset: %w", err)
	}
	return DecodeGraph(data)
}

// Wrap converts g into the element form, assigning edge ids.
func Wrap(g Graph) WrappedGraph {
	out := WrappedGraph{
		Nodes: make([]WrappedNode, 0, len(g.Nodes)),
		Edges: make([]WrappedEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, WrappedNode{Data: NodeData{ID: n.ID, Weight: n.Weight}})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, WrappedEdge{Data: EdgeData{
			ID:     e.ID(),
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		}})
	}
	return out
}

// EncodeWrapped renders g in the element form with two-space indentation.
func EncodeWrapped(g Graph) ([]byte, error) {
	return json.MarshalIndent(Wrap(g), "", "  ")
}
