package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		tags      = flag.Int("tags", cfg.NumTags, "number of connected tags to generate")
		edges     = flag.Int("edges", cfg.NumEdges, "target number of co-occurrence edges")
		clusters  = flag.Int("clusters", cfg.Clusters, "number of disjoint tag groups")
		isolated  = flag.Int("isolated", cfg.Isolated, "number of tags without co-occurrences")
		hubChance = flag.Float64("hub-chance", cfg.HubChance, "probability of reusing an already connected tag")
		maxWeight = flag.Int("max-weight", cfg.MaxWeight, "largest co-occurrence count")
		seed      = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir = flag.String("output-dir", "data", "directory to write <name>.json into")
		name      = flag.String("name", "generated", "dataset name")
		stdout    = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumTags:   *tags,
		NumEdges:  *edges,
		Clusters:  *clusters,
		Isolated:  *isolated,
		HubChance: clampProbability(*hubChance),
		MaxWeight: *maxWeight,
		Seed:      *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *stdout {
		data, err := domain.EncodeWrapped(dataset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode dataset: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteDataset(dataset, *outputDir, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d tags and %d edges into %s\n", len(dataset.Nodes), len(dataset.Edges), path)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value >= 1 {
		return 0.99
	}
	return value
}
