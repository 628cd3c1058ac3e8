package domain

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ExportDocument is the file downloaded when the user exports the current view.
type ExportDocument struct {
	Nodes        []WrappedNode `json:"nodes"`
	Edges        []WrappedEdge `json:"edges"`
	FilterWeight float64       `json:"filter_weight"`
	Layout       string        `json:"layout"`
}

// NewExport captures the visible graph together with the active filter and layout.
// Edge ids are not exported.
func NewExport(g Graph, threshold float64, layout string) ExportDocument {
	doc := ExportDocument{
		Nodes:        make([]WrappedNode, 0, len(g.Nodes)),
		Edges:        make([]WrappedEdge, 0, len(g.Edges)),
		FilterWeight: threshold,
		Layout:       layout,
	}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, WrappedNode{Data: NodeData{ID: n.ID, Weight: n.Weight}})
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, WrappedEdge{Data: EdgeData{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		}})
	}
	return doc
}

// Marshal renders the document with two-space indentation.
func (d ExportDocument) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ExportFilename names an export taken at t, e.g.
// network_export_2024-05-01T10-11-12-000Z.json.
func ExportFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "network_export_" + ts + ".json"
}
