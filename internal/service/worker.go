package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// DatasetWriter persists a dataset. Both the Neo4j repository and the SQLite
// store satisfy it.
type DatasetWriter interface {
	SaveDataset(ctx context.Context, name, title string, g domain.Graph) error
}

// IngestItem is one dataset to persist.
type IngestItem struct {
	Name  string
	Title string
	Graph domain.Graph
}

// BulkIngestor writes many datasets using a worker pool.
type BulkIngestor struct {
	writer  DatasetWriter
	workers int
	logger  *slog.Logger
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(writer DatasetWriter, workers int, logger *slog.Logger) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkIngestor{
		writer:  writer,
		workers: workers,
		logger:  logger.With("component", "ingest"),
	}
}

// IngestDatasets saves every item, continuing past individual failures. The
// failures are returned together as a *TaskError.
func (bi *BulkIngestor) IngestDatasets(ctx context.Context, items []IngestItem) error {
	return bi.run(ctx, len(items), func(idx int) error {
		item := items[idx]
		if err := bi.writer.SaveDataset(ctx, item.Name, item.Title, item.Graph); err != nil {
			metrics.IngestItems.WithLabelValues("error").Inc()
			return fmt.Errorf("dataset %s: %w", item.Name, err)
		}
		metrics.IngestItems.WithLabelValues("ok").Inc()
		bi.logger.Info("dataset ingested", "dataset", item.Name,
			"nodes", len(item.Graph.Nodes), "edges", len(item.Graph.Edges))
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for range min(bi.workers, total) {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
