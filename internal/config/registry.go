package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Registry lists the datasets the viewer offers and the view defaults.
type Registry struct {
	Default        string         `yaml:"default"`
	Datasets       []DatasetEntry `yaml:"datasets"`
	Palette        []string       `yaml:"palette"`
	WeightButtons  []float64      `yaml:"weight_buttons"`
	RemoteEndpoint string         `yaml:"remote_endpoint"`
	StaticDir      string         `yaml:"static_dir"`
}

// DatasetEntry maps a dataset name to its JSON file.
type DatasetEntry struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Path  string `yaml:"path"`
}

// DefaultWeightButtons are the thresholds offered when the registry names none.
var DefaultWeightButtons = []float64{0, 1, 2, 3, 4, 5}

// Dataset returns the entry called name.
func (r *Registry) Dataset(name string) (DatasetEntry, bool) {
	for _, d := range r.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return DatasetEntry{}, false
}

// Names returns the dataset names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.Datasets))
	for _, d := range r.Datasets {
		out = append(out, d.Name)
	}
	return out
}

// InitialThreshold is the threshold a freshly loaded dataset starts at.
func (r *Registry) InitialThreshold() float64 {
	if len(r.WeightButtons) == 0 {
		return 0
	}
	return r.WeightButtons[0]
}

// Validate reports structural problems with the registry.
func (r *Registry) Validate() error {
	if len(r.Datasets) == 0 {
		return errors.New("registry lists no datasets")
	}
	seen := make(map[string]struct{}, len(r.Datasets))
	for i, d := range r.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset %d has no name", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("dataset %q listed twice", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	if _, ok := seen[r.Default]; !ok {
		return fmt.Errorf("default dataset %q is not listed", r.Default)
	}
	return nil
}

// ParseRegistry decodes YAML, applies defaults and resolves relative dataset
// paths against baseDir.
func ParseRegistry(data []byte, baseDir string) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if reg.Default == "" && len(reg.Datasets) > 0 {
		reg.Default = reg.Datasets[0].Name
	}
	if len(reg.WeightButtons) == 0 {
		reg.WeightButtons = append([]float64(nil), DefaultWeightButtons...)
	}
	for i := range reg.Datasets {
		if reg.Datasets[i].Path == "" {
			reg.Datasets[i].Path = reg.Datasets[i].Name + ".json"
		}
		reg.Datasets[i].Path = resolve(baseDir, reg.Datasets[i].Path)
	}
	if reg.StaticDir != "" {
		reg.StaticDir = resolve(baseDir, reg.StaticDir)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// Loader reads the registry file and watches it for changes.
type Loader struct {
	path     string
	logger   *slog.Logger
	mu       sync.RWMutex
	current  *Registry
	onChange []func(*Registry)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{path: path, logger: logger.With("component", "registry")}
	reg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = reg
	return l, nil
}

// Path returns the registry file location.
func (l *Loader) Path() string {
	return l.path
}

// Registry returns the latest successfully loaded registry.
func (l *Loader) Registry() *Registry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked after every successful reload.
func (l *Loader) OnChange(fn func(*Registry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch hot-reloads the registry on file changes until stop is called.
// A registry that fails to parse is logged and the previous one is kept.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("registry watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("registry watcher add %s: %w", dir, err)
	}

	target := filepath.Clean(l.path)
	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						l.logger.Warn("registry reload failed, keeping previous", "error", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("registry watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the registry file.
func (l *Loader) Reload() (*Registry, error) {
	reg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = reg
	callbacks := make([]func(*Registry), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	l.logger.Info("registry loaded", "datasets", len(reg.Datasets), "default", reg.Default)
	for _, fn := range callbacks {
		fn(reg)
	}
	return reg, nil
}

func (l *Loader) load() (*Registry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", l.path, err)
	}
	reg, err := ParseRegistry(data, filepath.Dir(l.path))
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", l.path, err)
	}
	return reg, nil
}
