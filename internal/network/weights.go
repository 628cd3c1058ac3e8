package network

import (
	"fmt"
	"math"

	"github.com/vanshika/netviz/internal/domain"
)

// Style ranges used by the viewer stylesheet.
const (
	NodeWeightMin = 1.0
	NodeWeightMax = 23.0
	NodeSizeMin   = 30.0
	NodeSizeMax   = 80.0

	EdgeWeightMin = 1.0
	EdgeWeightMax = 5.0
	EdgeWidthMin  = 3.0
	EdgeWidthMax  = 12.0
)

var (
	edgeColorLow  = [3]float64{73, 80, 87}   // #495057
	edgeColorHigh = [3]float64{13, 110, 253} // #0d6efd
)

// WithNodeWeights returns a copy of g whose node weights are the sum of their
// incident edge weights. Nodes without edges get 0. A self loop counts twice.
func WithNodeWeights(g domain.Graph) domain.Graph {
	totals := make(map[string]float64, len(g.Nodes))
	for _, e := range g.Edges {
		totals[e.Source] += e.Weight
		totals[e.Target] += e.Weight
	}

	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Weight = totals[out.Nodes[i].ID]
	}
	return out
}

// IncidentWeight sums the weights of the edges touching id.
func IncidentWeight(g domain.Graph, id string) float64 {
	var sum float64
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			sum += e.Weight
		}
	}
	return sum
}

// MapData maps v linearly from [inMin, inMax] onto [outMin, outMax], clamping
// to the output range.
func MapData(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	t := (v - inMin) / (inMax - inMin)
	t = math.Max(0, math.Min(1, t))
	return outMin + t*(outMax-outMin)
}

// NodeSize is the rendered diameter of a node of the given weight. Nodes with
// weight 0 keep the base size.
func NodeSize(weight float64) float64 {
	if weight <= 0 {
		return NodeSizeMin
	}
	return MapData(weight, NodeWeightMin, NodeWeightMax, NodeSizeMin, NodeSizeMax)
}

// EdgeWidth is the rendered stroke width of an edge of the given weight.
func EdgeWidth(weight float64) float64 {
	return MapData(weight, EdgeWeightMin, EdgeWeightMax, EdgeWidthMin, EdgeWidthMax)
}

// EdgeRGB interpolates between the low and high edge colours. Weights outside
// [EdgeWeightMin, EdgeWeightMax] extrapolate and each channel is clamped to 0..255.
func EdgeRGB(weight float64) (r, g, b uint8) {
	t := (weight - EdgeWeightMin) / (EdgeWeightMax - EdgeWeightMin)
	var ch [3]uint8
	for i := range ch {
		v := math.Round(edgeColorLow[i] + t*(edgeColorHigh[i]-edgeColorLow[i]))
		ch[i] = uint8(math.Max(0, math.Min(255, v)))
	}
	return ch[0], ch[1], ch[2]
}

// EdgeColor renders EdgeRGB as a CSS rgb() value.
func EdgeColor(weight float64) string {
	r, g, b := EdgeRGB(weight)
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}
