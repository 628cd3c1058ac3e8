package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/netviz/internal/datasource"
)

// PreloadResult reports which datasets warmed successfully.
type PreloadResult struct {
	Loaded []string
	Failed map[string]error
}

// Preload loads names through src with at most workers concurrent loads, so a
// caching source is warm before the first viewer connects. Individual failures
// are collected rather than aborting the batch; only context cancellation
// returns an error.
func Preload(ctx context.Context, src datasource.Source, names []string, workers int, logger *slog.Logger) (PreloadResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		mu  sync.Mutex
		res = PreloadResult{Failed: make(map[string]error)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range names {
		g.Go(func() error {
			loaded, err := src.Load(gctx, name)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Warn("preload failed", "dataset", name, "error", err)
				mu.Lock()
				res.Failed[name] = err
				mu.Unlock()
				return nil
			}
			logger.Debug("preloaded", "dataset", name, "nodes", len(loaded.Nodes))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, name := range names {
		if _, failed := res.Failed[name]; failed {
			continue
		}
		res.Loaded = append(res.Loaded, name)
	}
	return res, nil
}
