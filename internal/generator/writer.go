package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/netviz/internal/domain"
)

// WriteDataset serializes g in the wrapped element form to <dir>/<name>.json
// and returns the file path.
func WriteDataset(g domain.Graph, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name+".json")
	data, err := domain.EncodeWrapped(g)
	if err != nil {
		return "", fmt.Errorf("encode json for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
