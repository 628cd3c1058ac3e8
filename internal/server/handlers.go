package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
	"github.com/vanshika/netviz/internal/network"
	"github.com/vanshika/netviz/internal/render"
	"github.com/vanshika/netviz/internal/service"
)

// APIHandlers exposes the stateless dataset endpoints.
type APIHandlers struct {
	logger   *slog.Logger
	source   datasource.Source
	registry func() *config.Registry
	nowFn    func() time.Time
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, source datasource.Source, registry func() *config.Registry) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		source:   source,
		registry: registry,
		nowFn:    time.Now,
	}
}

type datasetsResponse struct {
	Datasets      []domain.DatasetInfo `json:"datasets"`
	Default       string               `json:"default"`
	WeightButtons []float64            `json:"weight_buttons"`
	Layouts       []string             `json:"layouts"`
	Palette       []string             `json:"palette"`
}

// networkResponse keeps nodes and edges at the top level so the payload is
// itself a valid dataset document.
type networkResponse struct {
	Dataset    string              `json:"dataset"`
	Threshold  *float64            `json:"threshold,omitempty"`
	Nodes      []domain.WrappedNode `json:"nodes"`
	Edges      []domain.WrappedEdge `json:"edges"`
	Colors     map[string]string   `json:"colors"`
	Components int                 `json:"components"`
}

func (h *APIHandlers) handleDatasets(w http.ResponseWriter, r *http.Request) {
	reg := h.registry()
	resp := datasetsResponse{
		Datasets:      make([]domain.DatasetInfo, 0, len(reg.Datasets)),
		Default:       reg.Default,
		WeightButtons: reg.WeightButtons,
		Layouts:       network.Layouts(),
		Palette:       paletteOf(reg),
	}
	seen := make(map[string]struct{}, len(reg.Datasets))
	for _, d := range reg.Datasets {
		resp.Datasets = append(resp.Datasets, domain.DatasetInfo{Name: d.Name, Title: d.Title})
		seen[d.Name] = struct{}{}
	}

	// sources such as SQLite or Neo4j may hold datasets the registry does not list
	names, err := h.source.Names(r.Context())
	if err != nil {
		h.logger.Warn("failed to list source datasets", "error", err)
	}
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		resp.Datasets = append(resp.Datasets, domain.DatasetInfo{Name: name})
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleNetwork(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}

	wrapped := domain.Wrap(view.graph)
	resp := networkResponse{
		Dataset:    view.dataset,
		Nodes:      wrapped.Nodes,
		Edges:      wrapped.Edges,
		Colors:     view.colors,
		Components: len(network.Components(view.graph)),
	}
	if view.filtered {
		resp.Threshold = &view.threshold
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleNodeInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "node id is required")
		return
	}
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}

	info, err := network.Info(view.graph, id)
	if err != nil {
		h.fail(w, err, "failed to describe node", "node", id)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *APIHandlers) handleExport(w http.ResponseWriter, r *http.Request) {
	layout := r.URL.Query().Get("layout")
	if layout == "" {
		layout = network.DefaultLayout
	}
	if err := network.ValidateLayout(layout); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}

	doc := domain.NewExport(view.graph, view.threshold, layout)
	body, err := doc.Marshal()
	if err != nil {
		h.fail(w, err, "failed to encode export")
		return
	}
	metrics.Exports.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, domain.ExportFilename(h.nowFn())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *APIHandlers) handleSnapshotSVG(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, "image/svg+xml", render.WriteSVG)
}

func (h *APIHandlers) handleSnapshotPNG(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, "image/png", render.WritePNG)
}

func (h *APIHandlers) snapshot(w http.ResponseWriter, r *http.Request, contentType string,
	draw func(io.Writer, render.Scene) error) {
	labels := true
	if v := r.URL.Query().Get("labels"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "labels must be a boolean")
			return
		}
		labels = parsed
	}
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}

	scene := render.Scene{
		Title:     view.dataset,
		Graph:     view.graph,
		Colors:    view.colors,
		Labels:    labels,
		Threshold: view.threshold,
	}
	if id := r.URL.Query().Get("highlight"); id != "" {
		hood, err := network.NeighborhoodOf(view.graph, id)
		if err != nil {
			h.fail(w, err, "failed to highlight node", "node", id)
			return
		}
		scene.Highlight = &hood
	}

	var buf bytes.Buffer
	if err := draw(&buf, scene); err != nil {
		h.fail(w, err, "failed to render snapshot")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type loadedView struct {
	dataset   string
	graph     domain.Graph
	colors    map[string]string
	threshold float64
	filtered  bool
}

// loadView resolves the dataset and threshold query parameters, loads the
// dataset with derived node weights, filters it when a threshold is given and
// colours its components. It writes the error response itself.
func (h *APIHandlers) loadView(w http.ResponseWriter, r *http.Request) (loadedView, bool) {
	reg := h.registry()
	q := r.URL.Query()

	view := loadedView{dataset: strings.TrimSpace(q.Get("dataset"))}
	if view.dataset == "" {
		view.dataset = reg.Default
	}

	if raw := q.Get("threshold"); raw != "" {
		t, err := parseThreshold(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return loadedView{}, false
		}
		view.threshold, view.filtered = t, true
	}

	g, err := h.source.Load(r.Context(), view.dataset)
	if err != nil {
		h.fail(w, err, "failed to load dataset", "dataset", view.dataset)
		return loadedView{}, false
	}
	view.graph = network.WithNodeWeights(g)

	start := time.Now()
	if view.filtered {
		view.graph = network.Filter(view.graph, view.threshold)
	}
	view.colors, err = network.Colorize(view.graph, paletteOf(reg))
	if err != nil {
		h.fail(w, err, "failed to colour components")
		return loadedView{}, false
	}
	metrics.FilterDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	return view, true
}

// fail logs err and maps it to a status code.
func (h *APIHandlers) fail(w http.ResponseWriter, err error, msg string, attrs ...any) {
	status := statusFor(err)
	args := append([]any{"error", err, "status", status}, attrs...)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, args...)
	} else {
		h.logger.Debug(msg, args...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, network.ErrUnknownLayout), errors.Is(err, service.ErrInvalidThreshold):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotLoaded), errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, network.ErrEmptyPalette):
		return http.StatusInternalServerError
	default:
		// sources are upstream dependencies: unreachable, broken or malformed
		return http.StatusBadGateway
	}
}

func parseThreshold(raw string) (float64, error) {
	t, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: %q", service.ErrInvalidThreshold, raw)
	}
	return t, nil
}

func paletteOf(reg *config.Registry) []string {
	if reg == nil || len(reg.Palette) == 0 {
		return network.DefaultPalette
	}
	return reg.Palette
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
