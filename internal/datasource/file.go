package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/domain"
)

// FileSource reads dataset JSON files listed in the registry. The registry is
// consulted on every call so hot reloads take effect immediately.
type FileSource struct {
	registry func() *config.Registry
}

// NewFileSource returns a FileSource over the registry returned by reg.
func NewFileSource(reg func() *config.Registry) *FileSource {
	return &FileSource{registry: reg}
}

func (s *FileSource) Kind() string { return KindFile }

func (s *FileSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	if err := ctx.Err(); err != nil {
		return domain.Graph{}, err
	}
	entry, ok := s.registry().Dataset(name)
	if !ok {
		return domain.Graph{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("open dataset %s: %w", name, err)
	}
	defer f.Close()

	g, err := domain.ReadGraph(f)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("read dataset %s from %s: %w", name, entry.Path, err)
	}
	return g, nil
}

func (s *FileSource) Names(context.Context) ([]string, error) {
	return s.registry().Names(), nil
}

// Path returns the file backing dataset name.
func (s *FileSource) Path(name string) (string, bool) {
	entry, ok := s.registry().Dataset(name)
	return entry.Path, ok
}

// Dirs returns the distinct directories holding registry dataset files.
func (s *FileSource) Dirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, d := range s.registry().Datasets {
		dir := filepath.Dir(d.Path)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Resolve maps a dataset file path back to its dataset name.
func (s *FileSource) Resolve(path string) (string, bool) {
	for _, d := range s.registry().Datasets {
		if filepath.Clean(d.Path) == path {
			return d.Name, true
		}
	}
	return "", false
}
