// Package render draws viewer scenes as static ECharts pages and as SVG or
// PNG snapshots laid out on the weight-sorted grid.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/network"
)

// Scene is everything a renderer needs to draw one view.
type Scene struct {
	Title     string
	Graph     domain.Graph
	Colors    map[string]string
	Highlight *network.Neighborhood
	Labels    bool
	Threshold float64
}

const (
	cellSpacing = 100.0
	margin      = 60.0
	headerH     = 70.0
	// node sizes are diameters; snapshots draw them at this fraction
	snapshotScale = 0.5
)

var (
	colorBackdrop  = color.RGBA{0xf8, 0xf9, 0xfa, 0xff}
	colorHeaderBG  = color.RGBA{0xe9, 0xec, 0xef, 0xff}
	colorText      = color.RGBA{0x21, 0x25, 0x29, 0xff}
	colorSubtle    = color.RGBA{0x6c, 0x75, 0x7d, 0xff}
	colorBorder    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorHighlight = color.RGBA{0x0d, 0x6e, 0xfd, 0xff} // #0d6efd
	colorHighEdge  = color.RGBA{0x19, 0x87, 0x54, 0xff} // #198754
	colorFallback  = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
)

type placedNode struct {
	ID     string
	X, Y   float64
	Radius float64
	Fill   color.RGBA
	Marked bool
}

type placedEdge struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Stroke         color.RGBA
}

type layoutResult struct {
	Width, Height int
	Nodes         []placedNode
	Edges         []placedEdge
	index         map[string]int
}

// buildLayout places nodes on the grid and resolves styles. Dangling edge
// endpoints are not drawn and neither are their edges.
func buildLayout(s Scene) layoutResult {
	positions := network.GridPositions(s.Graph, cellSpacing)
	cols := network.GridColumns(len(positions))
	rows := 0
	if cols > 0 {
		rows = (len(positions) + cols - 1) / cols
	}

	out := layoutResult{
		Width:  int(2*margin + float64(max(cols-1, 0))*cellSpacing),
		Height: int(headerH + 2*margin + float64(max(rows-1, 0))*cellSpacing),
		index:  make(map[string]int, len(positions)),
	}
	out.Width = max(out.Width, 320)

	for _, p := range positions {
		node, _ := s.Graph.NodeByID(p.ID)
		fill, err := parseHex(s.Colors[p.ID])
		if err != nil {
			fill = colorFallback
		}
		out.index[p.ID] = len(out.Nodes)
		out.Nodes = append(out.Nodes, placedNode{
			ID:     p.ID,
			X:      margin + p.X,
			Y:      headerH + margin + p.Y,
			Radius: network.NodeSize(node.Weight) * snapshotScale / 2,
			Fill:   fill,
			Marked: s.Highlight != nil && s.Highlight.Contains(p.ID),
		})
	}

	for _, e := range s.Graph.Edges {
		si, okS := out.index[e.Source]
		ti, okT := out.index[e.Target]
		if !okS || !okT {
			continue
		}
		r, g, b := network.EdgeRGB(e.Weight)
		stroke := color.RGBA{r, g, b, 0xff}
		if s.Highlight != nil && (e.Source == s.Highlight.Center || e.Target == s.Highlight.Center) {
			stroke = colorHighEdge
		}
		out.Edges = append(out.Edges, placedEdge{
			X1: out.Nodes[si].X, Y1: out.Nodes[si].Y,
			X2: out.Nodes[ti].X, Y2: out.Nodes[ti].Y,
			Width:  network.EdgeWidth(e.Weight) * snapshotScale,
			Stroke: stroke,
		})
	}
	return out
}

func (s Scene) summary() string {
	return fmt.Sprintf("nodes: %d  edges: %d  threshold: %g",
		len(s.Graph.Nodes), len(s.Graph.Edges), s.Threshold)
}

// parseHex accepts #rgb and #rrggbb.
func parseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
