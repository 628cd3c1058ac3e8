package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
)

// FallbackSource tries its sources in order and returns the first success.
// It fails with domain.ErrDatasetNotFound only when every source reported the
// dataset as unknown.
type FallbackSource struct {
	sources []Source
	logger  *slog.Logger
}

// NewFallbackSource chains sources. Nil entries are skipped.
func NewFallbackSource(logger *slog.Logger, sources ...Source) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FallbackSource{sources: kept, logger: logger.With("component", "datasource")}
}

func (f *FallbackSource) Kind() string { return KindChain }

func (f *FallbackSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	var failures []error
	for _, src := range f.sources {
		g, err := src.Load(ctx, name)
		if err == nil {
			metrics.DatasetLoads.WithLabelValues(src.Kind(), metrics.OutcomeOK).Inc()
			f.logger.Debug("dataset loaded", "dataset", name, "source", src.Kind(),
				"nodes", len(g.Nodes), "edges", len(g.Edges))
			return g, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Graph{}, ctxErr
		}

		metrics.DatasetLoads.WithLabelValues(src.Kind(), metrics.OutcomeError).Inc()
		if errors.Is(err, domain.ErrDatasetNotFound) {
			f.logger.Debug("dataset not in source", "dataset", name, "source", src.Kind())
			continue
		}
		f.logger.Warn("dataset source failed, falling back", "dataset", name, "source", src.Kind(), "error", err)
		failures = append(failures, err)
	}

	if len(failures) == 0 {
		return domain.Graph{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}
	return domain.Graph{}, fmt.Errorf("load dataset %s: %w", name, errors.Join(failures...))
}

// Names merges the names of every source, keeping first-seen order. A source
// that fails to list is logged and skipped.
func (f *FallbackSource) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, src := range f.sources {
		names, err := src.Names(ctx)
		if err != nil {
			f.logger.Warn("list datasets failed", "source", src.Kind(), "error", err)
			continue
		}
		for _, n := range names {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out, nil
}
