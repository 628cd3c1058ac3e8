package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/logging"
)

type stubWriter struct {
	mu    sync.Mutex
	saved []string
	fail  map[string]error
}

func (s *stubWriter) SaveDataset(_ context.Context, name, _ string, _ domain.Graph) error {
	if err := s.fail[name]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, name)
	return nil
}

func TestBulkIngestor_IngestDatasets(t *testing.T) {
	writer := &stubWriter{}
	ingestor := NewBulkIngestor(writer, 3, logging.Discard())

	items := []IngestItem{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	if err := ingestor.IngestDatasets(context.Background(), items); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sort.Strings(writer.saved)
	if got := len(writer.saved); got != 4 {
		t.Fatalf("expected 4 datasets saved, got %d", got)
	}
}

func TestBulkIngestor_AggregatesErrors(t *testing.T) {
	boomB := errors.New("disk full")
	boomD := errors.New("constraint violation")
	writer := &stubWriter{fail: map[string]error{"b": boomB, "d": boomD}}
	ingestor := NewBulkIngestor(writer, 2, logging.Discard())

	items := []IngestItem{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	err := ingestor.IngestDatasets(context.Background(), items)

	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected TaskError, got %v", err)
	}
	if len(taskErr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(taskErr.Errors))
	}
	if !errors.Is(err, boomB) || !errors.Is(err, boomD) {
		t.Fatalf("expected both causes to be reachable, got %v", err)
	}
	if len(writer.saved) != 2 {
		t.Fatalf("expected the healthy datasets to be saved, got %v", writer.saved)
	}
}

func TestBulkIngestor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ingestor := NewBulkIngestor(&stubWriter{}, 2, logging.Discard())
	err := ingestor.IngestDatasets(ctx, []IngestItem{{Name: "a"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkIngestor_Empty(t *testing.T) {
	if err := NewBulkIngestor(&stubWriter{}, 0, nil).IngestDatasets(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for empty input, got %v", err)
	}
}

func TestPreloadCollectsFailures(t *testing.T) {
	src := &mapSource{graphs: map[string]domain.Graph{"chain": chain(), "other": chain()}}

	res, err := Preload(context.Background(), src, []string{"chain", "missing", "other"}, 2, logging.Discard())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Loaded) != 2 || res.Loaded[0] != "chain" || res.Loaded[1] != "other" {
		t.Fatalf("unexpected loaded list %v", res.Loaded)
	}
	if !errors.Is(res.Failed["missing"], domain.ErrDatasetNotFound) {
		t.Fatalf("expected missing to fail with ErrDatasetNotFound, got %v", res.Failed)
	}
}

func TestPreloadStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &mapSource{gates: map[string]chan struct{}{"slow": make(chan struct{})}}

	if _, err := Preload(ctx, src, []string{"slow"}, 1, logging.Discard()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
