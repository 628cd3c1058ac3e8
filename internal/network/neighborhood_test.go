package network

import (
	"errors"
	"math"
	"testing"

	"github.com/vanshika/netviz/internal/domain"
)

func starGraph() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{{ID: "hub", Weight: 6}, {ID: "x"}, {ID: "y"}, {ID: "far"}},
		Edges: []domain.Edge{
			{Source: "hub", Target: "x", Weight: 2},
			{Source: "y", Target: "hub", Weight: 4},
			{Source: "x", Target: "hub", Weight: 9},
			{Source: "y", Target: "far", Weight: 1},
		},
	}
}

func TestNeighborhoodOf(t *testing.T) {
	hood, err := NeighborhoodOf(starGraph(), "hub")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(hood.Neighbors) != 2 || hood.Neighbors[0] != "x" || hood.Neighbors[1] != "y" {
		t.Fatalf("unexpected neighbours %v", hood.Neighbors)
	}
	if len(hood.Edges) != 3 {
		t.Fatalf("expected 3 incident edges, got %d", len(hood.Edges))
	}
	if !hood.Contains("hub") || !hood.Contains("y") || hood.Contains("far") {
		t.Fatalf("unexpected membership for %+v", hood)
	}
}

func TestNeighborhoodOf_UnknownNode(t *testing.T) {
	_, err := NeighborhoodOf(starGraph(), "nobody")
	if !errors.Is(err, domain.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestInfo_UsesFirstJoiningEdge(t *testing.T) {
	info, err := Info(starGraph(), "hub")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info.Weight != 6 || info.Connections != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Neighbors[0] != (NeighborInfo{ID: "x", EdgeWeight: 2}) {
		t.Errorf("expected first x edge weight 2, got %+v", info.Neighbors[0])
	}
	if info.Neighbors[1] != (NeighborInfo{ID: "y", EdgeWeight: 4}) {
		t.Errorf("unexpected y entry %+v", info.Neighbors[1])
	}
}

func TestWithNodeWeights(t *testing.T) {
	g := WithNodeWeights(starGraph())
	want := map[string]float64{"hub": 15, "x": 11, "y": 5, "far": 1}
	for _, n := range g.Nodes {
		if n.Weight != want[n.ID] {
			t.Errorf("node %s: expected weight %v, got %v", n.ID, want[n.ID], n.Weight)
		}
	}

	isolated := WithNodeWeights(domain.Graph{Nodes: []domain.Node{{ID: "solo", Weight: 3}}})
	if isolated.Nodes[0].Weight != 0 {
		t.Errorf("isolated node should get weight 0, got %v", isolated.Nodes[0].Weight)
	}
}

func TestEdgeColor(t *testing.T) {
	cases := map[float64]string{
		1:  "rgb(73,80,87)",
		5:  "rgb(13,110,253)",
		3:  "rgb(43,95,170)",
		9:  "rgb(0,140,255)",
		-3: "rgb(133,50,0)",
	}
	for weight, want := range cases {
		if got := EdgeColor(weight); got != want {
			t.Errorf("EdgeColor(%v): expected %s, got %s", weight, want, got)
		}
	}
}

func TestMapDataAndSizes(t *testing.T) {
	if got := MapData(12, 1, 23, 30, 80); math.Abs(got-55) > 1e-9 {
		t.Errorf("expected 55, got %v", got)
	}
	if got := MapData(100, 1, 5, 3, 12); got != 12 {
		t.Errorf("expected clamp to 12, got %v", got)
	}
	if got := MapData(4, 4, 4, 1, 2); got != 1 {
		t.Errorf("degenerate input range should map to outMin, got %v", got)
	}
	if got := NodeSize(0); got != NodeSizeMin {
		t.Errorf("zero weight should keep base size, got %v", got)
	}
	if got := EdgeWidth(5); got != EdgeWidthMax {
		t.Errorf("expected max edge width, got %v", got)
	}
}

func TestGridOrderAndPositions(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{{ID: "c", Weight: 1}, {ID: "a", Weight: 5}, {ID: "b", Weight: 1}, {ID: "d", Weight: 1}, {ID: "e", Weight: 1}},
		Edges: []domain.Edge{{Source: "b", Target: "a", Weight: 3}},
	}

	order := GridOrder(g)
	got := make([]string, 0, len(order))
	for _, n := range order {
		got = append(got, n.ID)
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	if GridColumns(5) != 3 || GridColumns(9) != 3 || GridColumns(0) != 0 {
		t.Fatalf("unexpected column counts")
	}

	pos := GridPositions(g, 100)
	last := pos[len(pos)-1]
	if last.ID != "e" || last.Row != 1 || last.Col != 1 || last.X != 100 || last.Y != 100 {
		t.Fatalf("unexpected last position %+v", last)
	}
}

func TestValidateLayout(t *testing.T) {
	if err := ValidateLayout(LayoutGrid); err != nil {
		t.Fatalf("grid should be valid: %v", err)
	}
	if err := ValidateLayout("spiral"); !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}
}
