package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/netviz/internal/domain"
)

func twoTriangles() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "b1"}, {ID: "b2"}, {ID: "b3"}},
		Edges: []domain.Edge{
			{Source: "a1", Target: "a2", Weight: 1},
			{Source: "a2", Target: "a3", Weight: 1},
			{Source: "a3", Target: "a1", Weight: 1},
			{Source: "b1", Target: "b2", Weight: 1},
			{Source: "b2", Target: "b3", Weight: 1},
			{Source: "b3", Target: "b1", Weight: 1},
		},
	}
}

func TestColorize_TwoDisjointTriangles(t *testing.T) {
	colors, err := Colorize(twoTriangles(), DefaultPalette)
	require.NoError(t, err)
	require.Len(t, colors, 6)

	distinct := map[string]bool{}
	for _, c := range colors {
		distinct[c] = true
	}
	assert.Len(t, distinct, 2)

	assert.Equal(t, colors["a1"], colors["a2"])
	assert.Equal(t, colors["a1"], colors["a3"])
	assert.Equal(t, colors["b1"], colors["b2"])
	assert.Equal(t, colors["b1"], colors["b3"])
	assert.NotEqual(t, colors["a1"], colors["b1"])
}

func TestColorize_OrderFollowsNodeList(t *testing.T) {
	colors, err := Colorize(twoTriangles(), []string{"red", "blue"})
	require.NoError(t, err)

	assert.Equal(t, "red", colors["a1"])
	assert.Equal(t, "blue", colors["b1"])
}

func TestColorize_PaletteCycles(t *testing.T) {
	g := domain.Graph{Nodes: []domain.Node{{ID: "x"}, {ID: "y"}, {ID: "z"}}}
	colors, err := Colorize(g, []string{"red", "blue"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"x": "red", "y": "blue", "z": "red"}, colors)
}

func TestColorize_EmptyPalette(t *testing.T) {
	_, err := Colorize(twoTriangles(), nil)
	assert.ErrorIs(t, err, ErrEmptyPalette)
}

func TestComponents_SelfLoopsAndDanglingEndpoints(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{{ID: "a"}, {ID: "b"}},
		Edges: []domain.Edge{
			{Source: "a", Target: "a", Weight: 1},
			{Source: "b", Target: "ghost", Weight: 1},
		},
	}

	got := Components(g)
	assert.Equal(t, [][]string{{"a"}, {"b", "ghost"}}, got)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "ghost": 1}, ComponentIndex(g))
}

func TestComponents_EmptyGraph(t *testing.T) {
	assert.Empty(t, Components(domain.Graph{}))
}
