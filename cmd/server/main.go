package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/graph"
	"github.com/vanshika/netviz/internal/logging"
	"github.com/vanshika/netviz/internal/repository"
	"github.com/vanshika/netviz/internal/server"
	"github.com/vanshika/netviz/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	loader, err := config.NewLoader(cfg.Data.RegistryPath, logger)
	if err != nil {
		logger.Error("failed to load dataset registry", "path", cfg.Data.RegistryPath, "error", err)
		os.Exit(1)
	}
	if cfg.Data.WatchRegistry {
		stop, err := loader.Watch()
		if err != nil {
			logger.Warn("registry hot reload disabled", "error", err)
		} else {
			defer stop()
		}
	}

	graphClient, err := buildGraphClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	var sqliteStore *datasource.SQLiteStore
	if cfg.Data.SQLitePath != "" {
		sqliteStore, err = datasource.OpenSQLite(ctx, cfg.Data.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.Data.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()
	}

	files := datasource.NewFileSource(loader.Registry)
	sources := []datasource.Source{}
	if remote := remoteEndpoint(cfg, loader.Registry()); remote != "" {
		src, err := datasource.NewRemoteSource(remote, http.DefaultClient, cfg.Data.RemoteTimeout)
		if err != nil {
			logger.Error("invalid remote dataset endpoint", "endpoint", remote, "error", err)
			os.Exit(1)
		}
		sources = append(sources, src)
	}
	if sqliteStore != nil {
		sources = append(sources, sqliteStore)
	}
	if graphClient != nil {
		sources = append(sources, datasource.NewGraphSource(repository.New(graphClient)))
	}
	sources = append(sources, files)

	cache := datasource.NewCachedSource(datasource.NewFallbackSource(logger, sources...), logger)
	watching := true
	stopWatch, err := cache.Watch(files.Dirs(), files.Resolve)
	if err != nil {
		watching = false
		logger.Warn("dataset file watching disabled", "error", err)
	} else {
		defer stopWatch()
	}
	loader.OnChange(func(*config.Registry) {
		// paths or titles may have moved
		cache.InvalidateAll()
		if !watching {
			return
		}
		if err := cache.WatchDirs(files.Dirs()); err != nil {
			logger.Warn("failed to watch new dataset directories", "error", err)
		}
	})

	go func() {
		res, err := service.Preload(ctx, cache, loader.Registry().Names(), cfg.Data.PreloadWorkers, logger)
		if err != nil {
			logger.Warn("dataset preload interrupted", "error", err)
			return
		}
		logger.Info("datasets preloaded", "loaded", len(res.Loaded), "failed", len(res.Failed))
	}()

	origins := parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV)
	registry := loader.Registry
	router := server.NewRouter(logger, server.RouterDependencies{
		Health: server.HealthServices{
			server.GraphHealthService{Client: graphClient},
			server.RegistryHealthService{Registry: registry},
		},
		API:            server.NewAPIHandlers(logger, cache, registry),
		Viewer:         server.NewViewerSocket(logger, cache, registry, origins),
		StaticDir:      func() string { return registry().StaticDir },
		MetricsEnabled: cfg.HTTP.MetricsEnabled,
		AllowedOrigins: origins,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildGraphClient returns a nil client when no Neo4j URI is configured.
func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, nil
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

// remoteEndpoint prefers the environment over the registry file.
func remoteEndpoint(cfg config.Config, reg *config.Registry) string {
	if cfg.Data.RemoteEndpoint != "" {
		return cfg.Data.RemoteEndpoint
	}
	return reg.RemoteEndpoint
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

