package network

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanshika/netviz/internal/domain"
)

func chainGraph() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "lonely"}},
		Edges: []domain.Edge{
			{Source: "A", Target: "B", Weight: 1},
			{Source: "B", Target: "C", Weight: 2},
			{Source: "C", Target: "D", Weight: 3},
		},
	}
}

func nodeIDs(g domain.Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestFilter_ThresholdTwo(t *testing.T) {
	got := Filter(chainGraph(), 2)

	if ids := fmt.Sprint(nodeIDs(got)); ids != "[B C D]" {
		t.Fatalf("expected nodes [B C D], got %s", ids)
	}
	if len(got.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got.Edges))
	}
	if got.Edges[0].ID() != "B-C" || got.Edges[1].ID() != "C-D" {
		t.Fatalf("unexpected edges %+v", got.Edges)
	}
}

func TestFilter_ZeroKeepsEveryEdgeAndOnlyEndpoints(t *testing.T) {
	g := chainGraph()
	got := Filter(g, 0)

	if len(got.Edges) != len(g.Edges) {
		t.Fatalf("expected %d edges, got %d", len(g.Edges), len(got.Edges))
	}
	if ids := fmt.Sprint(nodeIDs(got)); ids != "[A B C D]" {
		t.Fatalf("isolated node should be dropped, got %s", ids)
	}
}

func TestFilter_AboveMaxIsEmpty(t *testing.T) {
	g := chainGraph()
	got := Filter(g, g.MaxEdgeWeight()+1)

	if !got.IsEmpty() {
		t.Fatalf("expected empty graph, got %+v", got)
	}
}

func TestFilter_DanglingEndpointIsSynthesised(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{{ID: "a", Weight: 7}},
		Edges: []domain.Edge{{Source: "a", Target: "ghost", Weight: 1}},
	}
	got := Filter(g, 1)

	if len(got.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %+v", got.Nodes)
	}
	if got.Nodes[0].Weight != 7 {
		t.Errorf("expected original node weight to be kept, got %v", got.Nodes[0].Weight)
	}
	if got.Nodes[1] != (domain.Node{ID: "ghost"}) {
		t.Errorf("expected synthesised ghost node, got %+v", got.Nodes[1])
	}
}

func genGraph(t *rapid.T) domain.Graph {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	nodeCount := rapid.IntRange(0, len(ids)).Draw(t, "nodes")
	g := domain.Graph{}
	for _, id := range ids[:nodeCount] {
		g.Nodes = append(g.Nodes, domain.Node{ID: id, Weight: float64(rapid.IntRange(0, 10).Draw(t, "nodeWeight"))})
	}
	edgeCount := rapid.IntRange(0, 12).Draw(t, "edges")
	for i := 0; i < edgeCount; i++ {
		g.Edges = append(g.Edges, domain.Edge{
			Source: rapid.SampledFrom(ids).Draw(t, "source"),
			Target: rapid.SampledFrom(ids).Draw(t, "target"),
			Weight: rapid.Float64Range(-5, 5).Draw(t, "weight"),
		})
	}
	return g
}

func TestFilter_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		threshold := rapid.Float64Range(-6, 6).Draw(t, "threshold")
		got := Filter(g, threshold)

		endpoints := map[string]bool{}
		for _, e := range got.Edges {
			if e.Weight < threshold {
				t.Fatalf("edge %s below threshold %v", e.ID(), threshold)
			}
			endpoints[e.Source] = true
			endpoints[e.Target] = true
		}
		seen := map[string]bool{}
		for _, n := range got.Nodes {
			if !endpoints[n.ID] {
				t.Fatalf("node %s is not an endpoint of a kept edge", n.ID)
			}
			if seen[n.ID] {
				t.Fatalf("node %s listed twice", n.ID)
			}
			seen[n.ID] = true
		}
		if len(seen) != len(endpoints) {
			t.Fatalf("expected %d nodes, got %d", len(endpoints), len(seen))
		}

		expected := 0
		for _, e := range g.Edges {
			if e.Weight >= threshold {
				expected++
			}
		}
		if len(got.Edges) != expected {
			t.Fatalf("expected %d edges, got %d", expected, len(got.Edges))
		}
	})
}

func TestFilter_MonotoneInThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		low := rapid.Float64Range(-6, 6).Draw(t, "low")
		high := low + rapid.Float64Range(0, 6).Draw(t, "delta")

		lo, hi := Filter(g, low), Filter(g, high)
		if len(hi.Edges) > len(lo.Edges) || len(hi.Nodes) > len(lo.Nodes) {
			t.Fatalf("raising threshold from %v to %v grew the graph", low, high)
		}
	})
}
