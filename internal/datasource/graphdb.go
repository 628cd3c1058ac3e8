package datasource

import (
	"context"

	"github.com/vanshika/netviz/internal/domain"
)

// DatasetStore is the subset of the Neo4j repository the viewer reads from.
type DatasetStore interface {
	LoadDataset(ctx context.Context, name string) (domain.Graph, error)
	ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error)
}

// GraphSource serves datasets persisted in Neo4j.
type GraphSource struct {
	store DatasetStore
}

// NewGraphSource wraps store.
func NewGraphSource(store DatasetStore) *GraphSource {
	return &GraphSource{store: store}
}

func (s *GraphSource) Kind() string { return KindGraph }

func (s *GraphSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	return s.store.LoadDataset(ctx, name)
}

func (s *GraphSource) Names(ctx context.Context) ([]string, error) {
	infos, err := s.store.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}
