package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/graph"
	"github.com/vanshika/netviz/internal/logging"
	"github.com/vanshika/netviz/internal/repository"
	"github.com/vanshika/netviz/internal/service"
)

const (
	targetNeo4j  = "neo4j"
	targetSQLite = "sqlite"
)

// ingest copies datasets into a dataset store. With no arguments every
// registry dataset is copied; otherwise each argument is a JSON file whose
// base name becomes the dataset name.
func main() {
	var (
		target     = flag.String("target", "", "destination store: neo4j or sqlite (default: neo4j when GRAPH_URI is set)")
		sqlitePath = flag.String("sqlite", "", "SQLite database path (overrides DATASETS_SQLITE)")
		workers    = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
		batchSize  = flag.Int("batch-size", 500, "Rows per Neo4j write")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	if *target == "" {
		*target = targetSQLite
		if cfg.Graph.URI != "" {
			*target = targetNeo4j
		}
	}
	if *sqlitePath == "" {
		*sqlitePath = cfg.Data.SQLitePath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	items, err := collectItems(ctx, cfg, flag.Args(), logger)
	if err != nil {
		logger.Error("failed to read datasets", "error", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		logger.Error("nothing to ingest")
		os.Exit(1)
	}

	var writer service.DatasetWriter
	switch *target {
	case targetNeo4j:
		graphClient, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			logger.Error("failed to create graph client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		writer = repository.New(graphClient).WithBatchSize(*batchSize)
	case targetSQLite:
		if *sqlitePath == "" {
			logger.Error("a SQLite path is required: pass -sqlite or set DATASETS_SQLITE")
			os.Exit(1)
		}
		store, err := datasource.OpenSQLite(ctx, *sqlitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", *sqlitePath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		writer = store
	default:
		logger.Error("unknown target", "target", *target)
		os.Exit(1)
	}

	ingestor := service.NewBulkIngestor(writer, *workers, logger)

	start := time.Now()
	logger.Info("ingesting datasets", "count", len(items), "target", *target, "workers", *workers)
	if err := ingestor.IngestDatasets(ctx, items); err != nil {
		logger.Error("dataset ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "datasets", len(items))
}

func collectItems(ctx context.Context, cfg config.Config, paths []string, logger *slog.Logger) ([]service.IngestItem, error) {
	if len(paths) > 0 {
		items := make([]service.IngestItem, 0, len(paths))
		for _, path := range paths {
			g, err := readGraph(path)
			if err != nil {
				return nil, err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			items = append(items, service.IngestItem{Name: name, Graph: g})
		}
		return items, nil
	}

	loader, err := config.NewLoader(cfg.Data.RegistryPath, logger)
	if err != nil {
		return nil, err
	}
	reg := loader.Registry()
	files := datasource.NewFileSource(loader.Registry)
	items := make([]service.IngestItem, 0, len(reg.Datasets))
	for _, d := range reg.Datasets {
		g, err := files.Load(ctx, d.Name)
		if err != nil {
			return nil, err
		}
		items = append(items, service.IngestItem{Name: d.Name, Title: d.Title, Graph: g})
	}
	return items, nil
}

func readGraph(path string) (domain.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	g, err := domain.ReadGraph(file)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for neo4j ingestion")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
