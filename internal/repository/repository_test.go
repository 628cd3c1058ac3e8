package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/graph"
)

func TestRepository_SaveDatasetBatches(t *testing.T) {
	mem := graph.NewMemoryClient()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := New(mem).WithBatchSize(2).WithClock(func() time.Time { return fixed })

	g := domain.Graph{
		Nodes: []domain.Node{{ID: "go", Weight: 4}, {ID: "rust", Weight: 3}, {ID: "zig", Weight: 1}},
		Edges: []domain.Edge{
			{Source: "go", Target: "rust", Weight: 2},
			{Source: "rust", Target: "zig", Weight: 1},
		},
	}

	if err := repo.SaveDataset(context.Background(), "langs", "Languages", g); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	// reset + two tag batches + one edge batch
	if len(calls) != 4 {
		t.Fatalf("expected 4 write queries, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Query, "DETACH DELETE") {
		t.Fatalf("expected first write to reset the dataset, got %q", calls[0].Query)
	}
	if calls[0].Params["updatedAt"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected updatedAt %v", calls[0].Params["updatedAt"])
	}
	if calls[0].Params["title"] != "Languages" {
		t.Fatalf("unexpected title %v", calls[0].Params["title"])
	}

	first, ok := calls[1].Params["nodes"].([]map[string]any)
	if !ok || len(first) != 2 {
		t.Fatalf("expected first tag batch of 2, got %#v", calls[1].Params["nodes"])
	}
	second := calls[2].Params["nodes"].([]map[string]any)
	if len(second) != 1 || second[0]["id"] != "zig" || second[0]["ordinal"] != 2 {
		t.Fatalf("unexpected second tag batch %#v", second)
	}

	edges := calls[3].Params["edges"].([]map[string]any)
	if len(edges) != 2 || edges[1]["source"] != "rust" || edges[1]["weight"] != 1.0 {
		t.Fatalf("unexpected edge batch %#v", edges)
	}
	for _, call := range calls {
		if call.Params["dataset"] != "langs" {
			t.Fatalf("expected dataset param on every write, got %#v", call.Params)
		}
	}
}

func TestRepository_SaveDatasetRequiresName(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.SaveDataset(context.Background(), "", "", domain.Graph{}); err == nil {
		t.Fatal("expected error for empty dataset name")
	}
}

func TestRepository_SaveDatasetPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := New(graph.NewMemoryClient().WithError(boom))
	err := repo.SaveDataset(context.Background(), "x", "", domain.Graph{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestRepository_LoadDataset(t *testing.T) {
	mem := graph.NewMemoryClient().WithReadResponder(func(cypher string, params map[string]any) (graph.Result, error) {
		if params["dataset"] != "langs" {
			return graph.Result{}, nil
		}
		switch cypher {
		case datasetExistsCypher:
			return graph.Result{Records: []graph.Record{{"name": "langs"}}}, nil
		case loadTagsCypher:
			return graph.Result{Records: []graph.Record{
				{"id": "go", "weight": int64(4)},
				{"id": "rust", "weight": 3.0},
			}}, nil
		case loadEdgesCypher:
			return graph.Result{Records: []graph.Record{
				{"source": "go", "target": "rust", "weight": int64(2)},
			}}, nil
		}
		return graph.Result{}, nil
	})
	repo := New(mem)

	g, err := repo.LoadDataset(context.Background(), "langs")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(g.Nodes) != 2 || g.Nodes[0].ID != "go" || g.Nodes[0].Weight != 4 {
		t.Fatalf("unexpected nodes %#v", g.Nodes)
	}
	if len(g.Edges) != 1 || g.Edges[0].Weight != 2 || g.Edges[0].Target != "rust" {
		t.Fatalf("unexpected edges %#v", g.Edges)
	}

	if _, err := repo.LoadDataset(context.Background(), "missing"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestRepository_ListDatasets(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"name": "langs", "title": "Languages"},
		{"name": "tags", "title": ""},
	}})
	repo := New(mem)

	got, err := repo.ListDatasets(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0].Title != "Languages" || got[1].Name != "tags" {
		t.Fatalf("unexpected datasets %#v", got)
	}
	if calls := mem.ReadCalls(); len(calls) != 1 || calls[0].Query != listDatasetsCypher {
		t.Fatalf("unexpected read calls %#v", calls)
	}
}
