package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeGraph_WrappedForm(t *testing.T) {
	payload := `{
		"nodes": [{"data": {"id": "go", "weight": 4}}, {"data": {"id": "rust"}}],
		"edges": [{"data": {"source": "go", "target": "rust", "weight": 3}}]
	}`

	g, err := DecodeGraph([]byte(payload))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("expected 2 nodes and 1 edge, got %d and %d", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0] != (Node{ID: "go", Weight: 4}) {
		t.Errorf("unexpected first node %+v", g.Nodes[0])
	}
	if g.Nodes[1].Weight != 0 {
		t.Errorf("missing node weight should default to 0, got %v", g.Nodes[1].Weight)
	}
	if g.Edges[0] != (Edge{Source: "go", Target: "rust", Weight: 3}) {
		t.Errorf("unexpected edge %+v", g.Edges[0])
	}
}

func TestDecodeGraph_RawAndMixedForms(t *testing.T) {
	payload := `{
		"nodes": [{"id": "a", "weight": 1}, {"data": {"id": "b", "weight": 2}}],
		"edges": [{"source": "a", "target": "b"}]
	}`

	g, err := DecodeGraph([]byte(payload))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if g.Nodes[0].ID != "a" || g.Nodes[1].ID != "b" {
		t.Fatalf("unexpected nodes %+v", g.Nodes)
	}
	if g.Edges[0].Weight != DefaultEdgeWeight {
		t.Errorf("missing edge weight should default to %v, got %v", DefaultEdgeWeight, g.Edges[0].Weight)
	}
}

func TestDecodeGraph_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"nodes": [`,
		"empty node id":  `{"nodes": [{"id": ""}]}`,
		"missing target": `{"edges": [{"source": "a"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeGraph([]byte(payload))
			if !errors.Is(err, ErrMalformedDataset) {
				t.Fatalf("expected ErrMalformedDataset, got %v", err)
			}
		})
	}
}

func TestWrap_AssignsEdgeIDs(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{{Source: "a", Target: "b", Weight: 2}},
	}
	wrapped := Wrap(g)
	if wrapped.Edges[0].Data.ID != "a-b" {
		t.Fatalf("expected edge id a-b, got %q", wrapped.Edges[0].Data.ID)
	}

	data, err := EncodeWrapped(g)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeGraph(data)
	if err != nil {
		t.Fatalf("decode of encoded graph: %v", err)
	}
	if len(back.Edges) != 1 || back.Edges[0].Weight != 2 {
		t.Fatalf("unexpected decoded edges %+v", back.Edges)
	}
}

func TestNewExport_OmitsEdgeIDs(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a", Weight: 3}, {ID: "b", Weight: 3}},
		Edges: []Edge{{Source: "a", Target: "b", Weight: 3}},
	}
	doc := NewExport(g, 2, "fcose")

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	if strings.Contains(body, `"id": "a-b"`) {
		t.Errorf("export should not carry edge ids: %s", body)
	}
	for _, want := range []string{`"filter_weight": 2`, `"layout": "fcose"`, `"source": "a"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in export, got %s", want, body)
		}
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 11, 12, 345_000_000, time.UTC)
	got := ExportFilename(ts)
	want := "network_export_2024-05-01T10-11-12-345Z.json"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGraph_MaxEdgeWeight(t *testing.T) {
	g := Graph{Edges: []Edge{{Weight: -2}, {Weight: -1}}}
	if got := g.MaxEdgeWeight(); got != -1 {
		t.Fatalf("expected -1, got %v", got)
	}
	if got := (Graph{}).MaxEdgeWeight(); got != 0 {
		t.Fatalf("expected 0 for empty graph, got %v", got)
	}
}
