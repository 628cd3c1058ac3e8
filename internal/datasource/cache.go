package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
)

// DefaultLoadTimeout bounds a shared inner load once no caller can cancel it.
const DefaultLoadTimeout = time.Minute

// CachedSource memoises successful loads of an inner Source. Concurrent loads
// of the same dataset share one call to the inner source. The shared call is
// detached from its callers' contexts: a caller that gives up stops waiting
// without failing the others.
type CachedSource struct {
	inner       Source
	logger      *slog.Logger
	group       singleflight.Group
	loadTimeout time.Duration

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	watched map[string]struct{}

	mu      sync.RWMutex
	entries map[string]domain.Graph
	// generation advances on every invalidation so a load that raced an
	// invalidation is not stored.
	generation uint64
}

// NewCachedSource wraps inner.
func NewCachedSource(inner Source, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		inner:       inner,
		logger:      logger.With("component", "cache"),
		loadTimeout: DefaultLoadTimeout,
		entries:     make(map[string]domain.Graph),
	}
}

// WithLoadTimeout overrides DefaultLoadTimeout. Zero or less disables it.
func (c *CachedSource) WithLoadTimeout(d time.Duration) *CachedSource {
	c.loadTimeout = d
	return c
}

func (c *CachedSource) Kind() string { return KindCache }

func (c *CachedSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	c.mu.RLock()
	g, ok := c.entries[name]
	gen := c.generation
	c.mu.RUnlock()
	if ok {
		metrics.DatasetCacheHits.Inc()
		return g.Clone(), nil
	}

	ch := c.group.DoChan(name, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}
		g, err := c.inner.Load(loadCtx, name)
		if err != nil {
			return domain.Graph{}, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.entries[name] = g
		}
		c.mu.Unlock()
		return g, nil
	})

	select {
	case <-ctx.Done():
		return domain.Graph{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Graph{}, res.Err
		}
		return res.Val.(domain.Graph).Clone(), nil
	}
}

func (c *CachedSource) Names(ctx context.Context) ([]string, error) {
	return c.inner.Names(ctx)
}

// Cached reports whether name is currently cached.
func (c *CachedSource) Cached(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Invalidate drops the cached copy of name.
func (c *CachedSource) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.generation++
	c.mu.Unlock()
	c.group.Forget(name)
	c.logger.Debug("dataset invalidated", "dataset", name)
}

// InvalidateAll empties the cache.
func (c *CachedSource) InvalidateAll() {
	c.mu.Lock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	c.entries = make(map[string]domain.Graph)
	c.generation++
	c.mu.Unlock()
	for _, name := range names {
		c.group.Forget(name)
	}
}

// PathResolver maps a changed file back to the dataset it backs.
type PathResolver func(path string) (dataset string, ok bool)

// Watch invalidates datasets whose files change under dirs until stop is
// called. resolve is consulted on each event so registry reloads are honoured.
// Further directories can be added with WatchDirs.
func (c *CachedSource) Watch(dirs []string, resolve PathResolver) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dataset watcher: %w", err)
	}
	c.watchMu.Lock()
	if c.watcher != nil {
		c.watchMu.Unlock()
		w.Close()
		return nil, errors.New("dataset watcher already running")
	}
	c.watcher = w
	c.watched = make(map[string]struct{})
	c.watchMu.Unlock()

	if err := c.WatchDirs(dirs); err != nil {
		c.detach()
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if name, ok := resolve(filepath.Clean(ev.Name)); ok {
					c.logger.Info("dataset file changed", "dataset", name, "path", ev.Name)
					c.Invalidate(name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.logger.Warn("dataset watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.detach()
			close(done)
		})
	}, nil
}

// WatchDirs adds directories to a running watcher. Directories already
// watched are skipped.
func (c *CachedSource) WatchDirs(dirs []string) error {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.watcher == nil {
		return errors.New("dataset watcher not running")
	}
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if _, dup := c.watched[dir]; dup {
			continue
		}
		if err := c.watcher.Add(dir); err != nil {
			return fmt.Errorf("dataset watcher add %s: %w", dir, err)
		}
		c.watched[dir] = struct{}{}
	}
	return nil
}

func (c *CachedSource) detach() {
	c.watchMu.Lock()
	c.watcher = nil
	c.watched = nil
	c.watchMu.Unlock()
}
