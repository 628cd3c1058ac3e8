package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/logging"
	"github.com/vanshika/netviz/internal/network"
)

// chain is A-B(1), B-C(2), C-D(3) plus an isolated node.
func chain() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "lonely"}},
		Edges: []domain.Edge{
			{Source: "A", Target: "B", Weight: 1},
			{Source: "B", Target: "C", Weight: 2},
			{Source: "C", Target: "D", Weight: 3},
		},
	}
}

type mapSource struct {
	graphs map[string]domain.Graph
	// gates block the named dataset until closed.
	gates map[string]chan struct{}
}

func (m *mapSource) Kind() string { return "memory" }

func (m *mapSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	if gate, ok := m.gates[name]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Graph{}, ctx.Err()
		}
	}
	g, ok := m.graphs[name]
	if !ok {
		return domain.Graph{}, domain.ErrDatasetNotFound
	}
	return g.Clone(), nil
}

func (m *mapSource) Names(context.Context) ([]string, error) { return nil, nil }

func newTestSession(src *mapSource) *Session {
	return NewSession(src, func() ViewOptions {
		return ViewOptions{Palette: []string{"red", "blue"}, InitialThreshold: 0}
	}, logging.Discard())
}

func TestSessionLoadAppliesInitialFilter(t *testing.T) {
	s := newTestSession(&mapSource{graphs: map[string]domain.Graph{"chain": chain()}})

	select {
	case <-s.Ready():
		t.Fatal("session should not be ready before a load")
	default:
	}

	v, err := s.Load(context.Background(), "chain")
	require.NoError(t, err)

	select {
	case <-s.Ready():
	default:
		t.Fatal("session should be ready after a load")
	}

	assert.Equal(t, "chain", v.Dataset)
	assert.Equal(t, 0.0, v.Threshold)
	assert.Equal(t, network.DefaultLayout, v.Layout)
	assert.True(t, v.Labels)
	// threshold 0 drops the isolated node
	assert.Len(t, v.Graph.Nodes, 4)

	b, _ := v.Graph.NodeByID("B")
	assert.Equal(t, 3.0, b.Weight, "node weight is the sum of incident edge weights")
	assert.Equal(t, "red", v.Colors["A"])
	assert.Equal(t, "red", v.Colors["D"])
}

func TestSessionFilterAndReset(t *testing.T) {
	s := newTestSession(&mapSource{graphs: map[string]domain.Graph{"chain": chain()}})

	_, err := s.Filter(2)
	require.ErrorIs(t, err, ErrNotLoaded)

	_, err = s.Load(context.Background(), "chain")
	require.NoError(t, err)

	v, err := s.Filter(2)
	require.NoError(t, err)
	ids := make([]string, 0, len(v.Graph.Nodes))
	for _, n := range v.Graph.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"B", "C", "D"}, ids)
	require.Len(t, v.Graph.Edges, 2)
	assert.Equal(t, "B-C", v.Graph.Edges[0].ID())

	v, err = s.Filter(10)
	require.NoError(t, err)
	assert.True(t, v.Graph.IsEmpty())

	_, err = s.Filter(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	v, err = s.Reset()
	require.NoError(t, err)
	assert.Len(t, v.Graph.Nodes, 5, "reset restores isolated nodes")
	assert.Equal(t, 0.0, v.Threshold)
	assert.Equal(t, "blue", v.Colors["lonely"])
}

func TestSessionHighlightAndInfo(t *testing.T) {
	s := newTestSession(&mapSource{graphs: map[string]domain.Graph{"chain": chain()}})
	_, err := s.Load(context.Background(), "chain")
	require.NoError(t, err)

	v, err := s.Highlight("B")
	require.NoError(t, err)
	assert.Equal(t, "B", v.Highlighted)
	require.NotNil(t, v.Neighborhood)
	assert.Equal(t, []string{"A", "C"}, v.Neighborhood.Neighbors)

	_, err = s.Highlight("nobody")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	info, err := s.Info("C")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Connections)
	assert.Equal(t, 5.0, info.Weight)

	// filtering replaces the elements, so the highlight goes away
	v, err = s.Filter(1)
	require.NoError(t, err)
	assert.Empty(t, v.Highlighted)

	_, err = s.Highlight("A")
	require.NoError(t, err)
	v = s.ClearHighlight()
	assert.Nil(t, v.Neighborhood)
}

func TestSessionLayoutLabelsExport(t *testing.T) {
	s := newTestSession(&mapSource{graphs: map[string]domain.Graph{"chain": chain()}})

	_, _, err := s.Export()
	require.ErrorIs(t, err, ErrNotLoaded)

	_, err = s.Load(context.Background(), "chain")
	require.NoError(t, err)

	_, err = s.SetLayout("spiral")
	assert.ErrorIs(t, err, network.ErrUnknownLayout)
	v, err := s.SetLayout(network.LayoutGrid)
	require.NoError(t, err)
	assert.Equal(t, network.LayoutGrid, v.Layout)

	assert.False(t, s.ToggleLabels())
	assert.True(t, s.ToggleLabels())

	_, err = s.Filter(2)
	require.NoError(t, err)

	s.nowFn = func() time.Time { return time.Date(2024, 5, 1, 10, 11, 12, 345e6, time.UTC) }
	doc, name, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, "network_export_2024-05-01T10-11-12-345Z.json", name)
	assert.Equal(t, 2.0, doc.FilterWeight)
	assert.Equal(t, network.LayoutGrid, doc.Layout)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 2)
}

func TestSessionStaleLoadNeverOverwritesNewer(t *testing.T) {
	slowGate := make(chan struct{})
	src := &mapSource{
		graphs: map[string]domain.Graph{
			"slow": {Nodes: []domain.Node{{ID: "s1"}, {ID: "s2"}}, Edges: []domain.Edge{{Source: "s1", Target: "s2", Weight: 1}}},
			"fast": chain(),
		},
		gates: map[string]chan struct{}{"slow": slowGate},
	}
	s := newTestSession(src)

	slowErr := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background(), "slow")
		slowErr <- err
	}()

	// wait until the slow load holds its ticket
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.ticket == 1
	}, time.Second, time.Millisecond)

	v, err := s.Load(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", v.Dataset)

	close(slowGate)
	err = <-slowErr
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSuperseded), "got %v", err)

	assert.Equal(t, "fast", s.Snapshot().Dataset)
	assert.Len(t, s.Snapshot().Graph.Nodes, 4)
}

func TestSessionLoadErrorKeepsPreviousView(t *testing.T) {
	s := newTestSession(&mapSource{graphs: map[string]domain.Graph{"chain": chain()}})
	_, err := s.Load(context.Background(), "chain")
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrDatasetNotFound)
	assert.Equal(t, "chain", s.Snapshot().Dataset)
}

func TestSessionReloadOfSameDatasetThroughCache(t *testing.T) {
	gate := make(chan struct{})
	inner := &mapSource{
		graphs: map[string]domain.Graph{"chain": chain()},
		gates:  map[string]chan struct{}{"chain": gate},
	}
	cache := datasource.NewCachedSource(inner, logging.Discard())
	s := NewSession(cache, func() ViewOptions { return ViewOptions{} }, logging.Discard())

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background(), "chain")
		firstErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	// the second load cancels the first one's context but joins the same
	// shared cache load, which must keep running
	secondErr := make(chan error, 1)
	var second View
	go func() {
		v, err := s.Load(context.Background(), "chain")
		second = v
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate)

	assert.ErrorIs(t, <-firstErr, ErrSuperseded)
	require.NoError(t, <-secondErr)
	assert.Equal(t, "chain", second.Dataset)
	assert.Len(t, second.Graph.Edges, 3)
}
