package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/vanshika/netviz/internal/network"
)

// PageOptions configures a static ECharts page.
type PageOptions struct {
	PageTitle string
	// Layout is a viewer layout name. Grid is computed here; every other
	// layout is drawn with ECharts' force simulation.
	Layout string
}

// WriteHTML renders s as a standalone ECharts page.
func WriteHTML(w io.Writer, s Scene, po PageOptions) error {
	page := components.NewPage()
	page.AddCharts(graphChart(s, po))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func graphChart(s Scene, po PageOptions) *charts.Graph {
	comps := network.Components(s.Graph)
	categoryOf := make(map[string]int)
	categories := make([]*opts.GraphCategory, 0, len(comps))
	for i, cc := range comps {
		for _, id := range cc {
			categoryOf[id] = i
		}
		colour := ""
		if len(cc) > 0 {
			colour = s.Colors[cc[0]]
		}
		categories = append(categories, &opts.GraphCategory{
			Name:      fmt.Sprintf("component %d", i+1),
			ItemStyle: &opts.ItemStyle{Color: colour},
		})
	}

	grid := po.Layout == network.LayoutGrid
	var positions map[string]network.Position
	if grid {
		positions = make(map[string]network.Position, len(s.Graph.Nodes))
		for _, p := range network.GridPositions(s.Graph, cellSpacing) {
			positions[p.ID] = p
		}
	}

	nodes := make([]opts.GraphNode, 0, len(s.Graph.Nodes))
	for _, n := range s.Graph.Nodes {
		gn := opts.GraphNode{
			Name:     n.ID,
			Value:    float32(n.Weight),
			Category: categoryOf[n.ID],
		}
		if c, ok := s.Colors[n.ID]; ok {
			gn.ItemStyle = &opts.ItemStyle{Color: c}
		}
		if grid {
			p := positions[n.ID]
			gn.X, gn.Y = float32(p.X), float32(p.Y)
		}
		nodes = append(nodes, gn)
	}

	links := make([]opts.GraphLink, 0, len(s.Graph.Edges))
	for _, e := range s.Graph.Edges {
		links = append(links, opts.GraphLink{
			Source: e.Source,
			Target: e.Target,
			Value:  float32(e.Weight),
			LineStyle: &opts.LineStyle{
				Color: network.EdgeColor(e.Weight),
				Width: float32(network.EdgeWidth(e.Weight)),
			},
		})
	}

	chart := opts.GraphChart{
		Roam:       opts.Bool(true),
		Draggable:  opts.Bool(true),
		Categories: categories,
	}
	if grid {
		chart.Layout = "none"
	} else {
		chart.Layout = "force"
		chart.Force = &opts.GraphForce{Repulsion: 8000, EdgeLength: 100, Gravity: 0.25}
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: po.PageTitle,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    s.Title,
			Subtitle: s.summary(),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"network",
		nodes,
		links,
		charts.WithGraphChartOpts(chart),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(s.Labels),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}
