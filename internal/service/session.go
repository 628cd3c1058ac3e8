package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
	"github.com/vanshika/netviz/internal/network"
)

var (
	// ErrSuperseded is returned by a load that finished after a newer load
	// was started on the same session.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrNotLoaded is returned by view operations before any dataset loaded.
	ErrNotLoaded = errors.New("no dataset loaded")
	// ErrInvalidThreshold rejects NaN and infinite thresholds.
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// ViewOptions are the registry-driven defaults applied on every load.
type ViewOptions struct {
	Palette          []string
	InitialThreshold float64
}

// View is a consistent copy of a session's state.
type View struct {
	Dataset      string
	Threshold    float64
	Layout       string
	Labels       bool
	Highlighted  string
	Graph        domain.Graph
	Colors       map[string]string
	Neighborhood *network.Neighborhood
}

// Session is one viewer's state: the loaded dataset, the active filter and
// the presentation toggles. It is safe for concurrent use.
type Session struct {
	id      string
	source  datasource.Source
	options func() ViewOptions
	logger  *slog.Logger
	nowFn   func() time.Time

	mu     sync.Mutex
	ticket uint64
	cancel context.CancelFunc
	ready  chan struct{}

	dataset   string
	original  domain.Graph
	current   domain.Graph
	colors    map[string]string
	threshold float64
	layout    string
	labels    bool
	highlight *network.Neighborhood
}

// NewSession creates a session reading from source. options is evaluated on
// every load so registry reloads apply to the next dataset.
func NewSession(source datasource.Source, options func() ViewOptions, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if options == nil {
		options = func() ViewOptions { return ViewOptions{} }
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		source:  source,
		options: options,
		logger:  logger.With("component", "session", "session", id),
		nowFn:   time.Now,
		ready:   make(chan struct{}),
		layout:  network.DefaultLayout,
		labels:  true,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Ready is closed once the first dataset load completes.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Load fetches dataset name and makes it the session's view. Starting a load
// cancels any load still in flight; if a newer load starts before this one
// finishes, this one returns ErrSuperseded and leaves the state untouched.
func (s *Session) Load(ctx context.Context, name string) (View, error) {
	s.mu.Lock()
	s.ticket++
	ticket := s.ticket
	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.logger.Debug("loading dataset", "dataset", name, "ticket", ticket)
	g, err := s.source.Load(loadCtx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.ticket {
		metrics.SupersededLoads.Inc()
		s.logger.Debug("discarding stale load", "dataset", name, "ticket", ticket, "latest", s.ticket)
		return View{}, fmt.Errorf("%w: %s", ErrSuperseded, name)
	}
	s.cancel = nil
	if err != nil {
		return View{}, err
	}

	opts := s.options()
	s.dataset = name
	s.original = network.WithNodeWeights(g)
	s.threshold = opts.InitialThreshold
	s.highlight = nil
	if err := s.refilterLocked(opts.Palette); err != nil {
		return View{}, err
	}

	select {
	case <-s.ready:
	default:
		close(s.ready)
	}

	s.logger.Info("dataset loaded", "dataset", name,
		"nodes", len(s.original.Nodes), "edges", len(s.original.Edges),
		"visible_nodes", len(s.current.Nodes))
	return s.viewLocked(), nil
}

// Filter keeps only edges with weight >= threshold and their endpoints, then
// recolours components. Any highlight is cleared.
func (s *Session) Filter(threshold float64) (View, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == "" {
		return View{}, ErrNotLoaded
	}

	s.threshold = threshold
	s.highlight = nil
	if err := s.refilterLocked(s.options().Palette); err != nil {
		return View{}, err
	}
	return s.viewLocked(), nil
}

// Reset restores the complete dataset, isolated nodes included, and moves the
// threshold back to its initial value.
func (s *Session) Reset() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == "" {
		return View{}, ErrNotLoaded
	}

	opts := s.options()
	colors, err := network.Colorize(s.original, paletteOrDefault(opts.Palette))
	if err != nil {
		return View{}, err
	}
	s.threshold = opts.InitialThreshold
	s.current = s.original.Clone()
	s.colors = colors
	s.highlight = nil
	return s.viewLocked(), nil
}

// Highlight marks the closed neighbourhood of id in the current view.
func (s *Session) Highlight(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == "" {
		return View{}, ErrNotLoaded
	}
	nb, err := network.NeighborhoodOf(s.current, id)
	if err != nil {
		return View{}, err
	}
	s.highlight = &nb
	return s.viewLocked(), nil
}

// ClearHighlight removes any highlight.
func (s *Session) ClearHighlight() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = nil
	return s.viewLocked()
}

// Info describes a node of the current view.
func (s *Session) Info(id string) (network.NodeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == "" {
		return network.NodeInfo{}, ErrNotLoaded
	}
	return network.Info(s.current, id)
}

// SetLayout selects the layout the client should run.
func (s *Session) SetLayout(name string) (View, error) {
	if err := network.ValidateLayout(name); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = name
	return s.viewLocked(), nil
}

// ToggleLabels flips label visibility and returns the new state.
func (s *Session) ToggleLabels() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = !s.labels
	return s.labels
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Export builds the download document for the current view and its file name.
func (s *Session) Export() (domain.ExportDocument, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == "" {
		return domain.ExportDocument{}, "", ErrNotLoaded
	}
	metrics.Exports.Inc()
	doc := domain.NewExport(s.current, s.threshold, s.layout)
	return doc, domain.ExportFilename(s.nowFn()), nil
}

// Close cancels any in-flight load.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) refilterLocked(palette []string) error {
	start := time.Now()
	current := network.Filter(s.original, s.threshold)
	colors, err := network.Colorize(current, paletteOrDefault(palette))
	if err != nil {
		return err
	}
	metrics.FilterDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	s.current = current
	s.colors = colors
	return nil
}

func (s *Session) viewLocked() View {
	v := View{
		Dataset:   s.dataset,
		Threshold: s.threshold,
		Layout:    s.layout,
		Labels:    s.labels,
		Graph:     s.current.Clone(),
		Colors:    make(map[string]string, len(s.colors)),
	}
	for k, c := range s.colors {
		v.Colors[k] = c
	}
	if s.highlight != nil {
		nb := *s.highlight
		v.Highlighted = nb.Center
		v.Neighborhood = &nb
	}
	return v
}

func paletteOrDefault(p []string) []string {
	if len(p) == 0 {
		return network.DefaultPalette
	}
	return p
}
