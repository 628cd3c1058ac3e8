package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/graph"
)

// DefaultBatchSize bounds the number of nodes or edges sent per UNWIND write.
const DefaultBatchSize = 500

// Repository persists datasets as (:Dataset) and (:Tag)-[:CO_OCCURS]->(:Tag)
// subgraphs.
type Repository struct {
	client    graph.Client
	batchSize int
	nowFn     func() time.Time
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{
		client:    client,
		batchSize: DefaultBatchSize,
		nowFn:     time.Now,
	}
}

// WithBatchSize overrides the UNWIND batch size.
func (r *Repository) WithBatchSize(n int) *Repository {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// WithClock overrides the time provider (used primarily in tests).
func (r *Repository) WithClock(nowFn func() time.Time) *Repository {
	if nowFn != nil {
		r.nowFn = nowFn
	}
	return r
}

// SaveDataset replaces the stored dataset called name with g. Node and edge
// order is kept through ordinals. Edge endpoints missing from g.Nodes are
// stored as dangling tags, which LoadDataset does not list as nodes.
func (r *Repository) SaveDataset(ctx context.Context, name, title string, g domain.Graph) error {
	if name == "" {
		return errors.New("dataset name is required")
	}

	_, err := r.client.ExecuteWrite(ctx, resetDatasetCypher, map[string]any{
		"dataset":   name,
		"title":     title,
		"updatedAt": r.nowFn().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("reset dataset %s: %w", name, err)
	}

	nodes := nodeParams(g.Nodes)
	for start := 0; start < len(nodes); start += r.batchSize {
		end := min(start+r.batchSize, len(nodes))
		_, err := r.client.ExecuteWrite(ctx, upsertTagsCypher, map[string]any{
			"dataset": name,
			"nodes":   nodes[start:end],
		})
		if err != nil {
			return fmt.Errorf("write tags of %s: %w", name, err)
		}
	}

	edges := edgeParams(g.Edges)
	for start := 0; start < len(edges); start += r.batchSize {
		end := min(start+r.batchSize, len(edges))
		_, err := r.client.ExecuteWrite(ctx, createEdgesCypher, map[string]any{
			"dataset": name,
			"edges":   edges[start:end],
		})
		if err != nil {
			return fmt.Errorf("write co-occurrences of %s: %w", name, err)
		}
	}

	return nil
}

// LoadDataset reads the dataset called name back in its stored order.
func (r *Repository) LoadDataset(ctx context.Context, name string) (domain.Graph, error) {
	params := map[string]any{"dataset": name}

	found, err := r.client.ExecuteRead(ctx, datasetExistsCypher, params)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("lookup dataset %s: %w", name, err)
	}
	if len(found.Records) == 0 {
		return domain.Graph{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}

	nodeRes, err := r.client.ExecuteRead(ctx, loadTagsCypher, params)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("load tags of %s: %w", name, err)
	}
	edgeRes, err := r.client.ExecuteRead(ctx, loadEdgesCypher, params)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("load co-occurrences of %s: %w", name, err)
	}

	g := domain.Graph{
		Nodes: make([]domain.Node, 0, len(nodeRes.Records)),
		Edges: make([]domain.Edge, 0, len(edgeRes.Records)),
	}
	for _, rec := range nodeRes.Records {
		g.Nodes = append(g.Nodes, domain.Node{ID: rec.String("id"), Weight: rec.Float("weight")})
	}
	for _, rec := range edgeRes.Records {
		g.Edges = append(g.Edges, domain.Edge{
			Source: rec.String("source"),
			Target: rec.String("target"),
			Weight: rec.Float("weight"),
		})
	}
	return g, nil
}

// ListDatasets returns the stored datasets sorted by name.
func (r *Repository) ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	res, err := r.client.ExecuteRead(ctx, listDatasetsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	out := make([]domain.DatasetInfo, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, domain.DatasetInfo{Name: rec.String("name"), Title: rec.String("title")})
	}
	return out, nil
}

func nodeParams(nodes []domain.Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for i, n := range nodes {
		out = append(out, map[string]any{
			"id":      n.ID,
			"weight":  n.Weight,
			"ordinal": i,
		})
	}
	return out
}

func edgeParams(edges []domain.Edge) []map[string]any {
	out := make([]map[string]any, 0, len(edges))
	for i, e := range edges {
		out = append(out, map[string]any{
			"source":  e.Source,
			"target":  e.Target,
			"weight":  e.Weight,
			"ordinal": i,
		})
	}
	return out
}

const resetDatasetCypher = `
MERGE (d:Dataset {name: $dataset})
SET d.title = $title,
    d.updatedAt = $updatedAt
WITH d
OPTIONAL MATCH (t:Tag {dataset: $dataset})
DETACH DELETE t
`

const upsertTagsCypher = `
UNWIND $nodes AS node
MERGE (t:Tag {dataset: $dataset, id: node.id})
SET t.weight = node.weight,
    t.ordinal = node.ordinal,
    t.dangling = false
`

const createEdgesCypher = `
UNWIND $edges AS edge
MERGE (s:Tag {dataset: $dataset, id: edge.source})
  ON CREATE SET s.weight = 0, s.dangling = true
MERGE (t:Tag {dataset: $dataset, id: edge.target})
  ON CREATE SET t.weight = 0, t.dangling = true
CREATE (s)-[:CO_OCCURS {weight: edge.weight, ordinal: edge.ordinal}]->(t)
`

const datasetExistsCypher = `
MATCH (d:Dataset {name: $dataset})
RETURN d.name AS name
`

const loadTagsCypher = `
MATCH (t:Tag {dataset: $dataset})
WHERE coalesce(t.dangling, false) = false
RETURN t.id AS id, t.weight AS weight
ORDER BY t.ordinal
`

const loadEdgesCypher = `
MATCH (s:Tag {dataset: $dataset})-[r:CO_OCCURS]->(t:Tag {dataset: $dataset})
RETURN s.id AS source, t.id AS target, r.weight AS weight
ORDER BY r.ordinal
`

const listDatasetsCypher = `
MATCH (d:Dataset)
RETURN d.name AS name, coalesce(d.title, '') AS title
ORDER BY d.name
`
