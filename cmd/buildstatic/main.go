package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/logging"
	"github.com/vanshika/netviz/internal/network"
	"github.com/vanshika/netviz/internal/render"
)

// buildstatic writes a server-less copy of the viewer: the static assets, every
// registry dataset as <name>.json and a pre-rendered <name>.html chart.
func main() {
	var (
		outDir    = flag.String("out", "dist", "output directory")
		layout    = flag.String("layout", network.DefaultLayout, "layout for the rendered charts")
		threshold = flag.Float64("threshold", 0, "edge weight threshold (default: first weight button)")
		workers   = flag.Int("workers", 4, "datasets rendered concurrently")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging).With("component", "buildstatic")

	if err := network.ValidateLayout(*layout); err != nil {
		logger.Error("invalid layout", "error", err)
		os.Exit(1)
	}

	loader, err := config.NewLoader(cfg.Data.RegistryPath, logger)
	if err != nil {
		logger.Error("failed to load dataset registry", "error", err)
		os.Exit(1)
	}
	reg := loader.Registry()
	*threshold = effectiveThreshold(flag.CommandLine, *threshold, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}
	hasIndex := false
	if reg.StaticDir != "" {
		if err := copyDir(reg.StaticDir, *outDir); err != nil {
			logger.Error("failed to copy static assets", "dir", reg.StaticDir, "error", err)
			os.Exit(1)
		}
		_, err := os.Stat(filepath.Join(*outDir, "index.html"))
		hasIndex = err == nil
	}

	b := builder{
		files:     datasource.NewFileSource(loader.Registry),
		palette:   reg.Palette,
		layout:    *layout,
		threshold: *threshold,
		outDir:    *outDir,
		logger:    logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, d := range reg.Datasets {
		g.Go(func() error {
			return b.build(gctx, d, !hasIndex && d.Name == reg.Default)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("static build failed", "error", err)
		os.Exit(1)
	}

	logger.Info("static build complete", "out", *outDir, "datasets", len(reg.Datasets),
		"duration", time.Since(start).String())
}

// effectiveThreshold returns value when -threshold was passed on fs, any real
// number included, and the registry's initial threshold otherwise.
func effectiveThreshold(fs *flag.FlagSet, value float64, reg *config.Registry) float64 {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			set = true
		}
	})
	if set {
		return value
	}
	return reg.InitialThreshold()
}

type builder struct {
	files     *datasource.FileSource
	palette   []string
	layout    string
	threshold float64
	outDir    string
	logger    *slog.Logger
}

func (b builder) build(ctx context.Context, d config.DatasetEntry, asIndex bool) error {
	full, err := b.files.Load(ctx, d.Name)
	if err != nil {
		return err
	}
	full = network.WithNodeWeights(full)

	data, err := domain.EncodeWrapped(full)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.Name, err)
	}
	if err := os.WriteFile(filepath.Join(b.outDir, d.Name+".json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s json: %w", d.Name, err)
	}

	visible := network.Filter(full, b.threshold)
	palette := b.palette
	if len(palette) == 0 {
		palette = network.DefaultPalette
	}
	colors, err := network.Colorize(visible, palette)
	if err != nil {
		return err
	}

	title := d.Title
	if title == "" {
		title = d.Name
	}
	scene := render.Scene{
		Title:     title,
		Graph:     visible,
		Colors:    colors,
		Labels:    true,
		Threshold: b.threshold,
	}

	pages := []string{d.Name + ".html"}
	if asIndex {
		pages = append(pages, "index.html")
	}
	for _, page := range pages {
		if err := writePage(filepath.Join(b.outDir, page), scene, render.PageOptions{PageTitle: title, Layout: b.layout}); err != nil {
			return fmt.Errorf("render %s: %w", d.Name, err)
		}
	}
	b.logger.Info("dataset rendered", "dataset", d.Name, "nodes", len(visible.Nodes), "edges", len(visible.Edges))
	return nil
}

func writePage(path string, s render.Scene, po render.PageOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return render.WriteHTML(f, s, po)
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	_, err = io.Copy(out, in)
	return err
}
