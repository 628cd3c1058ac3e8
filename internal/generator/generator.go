package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/network"
)

// Generator produces synthetic tag concurrence graphs.
type Generator struct {
	cfg  Config
	rand *rand.Rand
	tags []string
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumTags <= 0 {
		cfg.NumTags = def.NumTags
	}
	if cfg.NumEdges < 0 {
		cfg.NumEdges = def.NumEdges
	}
	if cfg.Clusters <= 0 {
		cfg.Clusters = 1
	}
	if cfg.Clusters > cfg.NumTags {
		cfg.Clusters = cfg.NumTags
	}
	if cfg.Isolated < 0 {
		cfg.Isolated = 0
	}
	if cfg.HubChance < 0 || cfg.HubChance >= 1 {
		cfg.HubChance = def.HubChance
	}
	if cfg.MaxWeight <= 0 {
		cfg.MaxWeight = def.MaxWeight
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
		tags: defaultTags(),
	}
}

// Generate synthesises one dataset. Node weights are the sums of their
// incident edge weights. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (domain.Graph, error) {
	names := g.tagNames(g.cfg.NumTags + g.cfg.Isolated)

	clusters := make([][]string, g.cfg.Clusters)
	for i := 0; i < g.cfg.NumTags; i++ {
		c := i % g.cfg.Clusters
		clusters[c] = append(clusters[c], names[i])
	}

	out := domain.Graph{Nodes: make([]domain.Node, 0, len(names))}
	for _, name := range names {
		out.Nodes = append(out.Nodes, domain.Node{ID: name})
	}

	seen := make(map[[2]string]struct{}, g.cfg.NumEdges)
	hubs := make([][]string, g.cfg.Clusters)
	attempts := 0
	for len(out.Edges) < g.cfg.NumEdges && attempts < g.cfg.NumEdges*20 {
		attempts++
		if attempts%256 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Graph{}, err
			}
		}

		c := g.rand.Intn(g.cfg.Clusters)
		members := clusters[c]
		if len(members) < 2 {
			continue
		}
		a := g.pick(members, &hubs[c])
		b := g.pick(members, &hubs[c])
		if a == b {
			continue
		}
		key := [2]string{a, b}
		if b < a {
			key = [2]string{b, a}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Edges = append(out.Edges, domain.Edge{Source: a, Target: b, Weight: g.randomWeight()})
	}
	if err := ctx.Err(); err != nil {
		return domain.Graph{}, err
	}

	return network.WithNodeWeights(out), nil
}

// pick favours tags that already co-occur so the graph grows hubs.
func (g *Generator) pick(members []string, pool *[]string) string {
	if len(*pool) > 0 && g.rand.Float64() < g.cfg.HubChance {
		return (*pool)[g.rand.Intn(len(*pool))]
	}
	val := members[g.rand.Intn(len(members))]
	*pool = append(*pool, val)
	return val
}

// randomWeight skews towards light co-occurrences.
func (g *Generator) randomWeight() float64 {
	r := g.rand.Float64()
	return float64(1 + int(r*r*float64(g.cfg.MaxWeight)))
}

func (g *Generator) tagNames(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		base := g.tags[i%len(g.tags)]
		if round := i / len(g.tags); round > 0 {
			base = fmt.Sprintf("%s-%d", base, round+1)
		}
		out = append(out, base)
	}
	g.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func defaultTags() []string {
	return []string{
		"python", "javascript", "go", "rust", "java", "kotlin", "swift", "ruby", "php", "scala",
		"haskell", "elixir", "clojure", "typescript", "react", "vue", "angular", "svelte", "django", "flask",
		"rails", "spring", "kubernetes", "docker", "terraform", "ansible", "aws", "gcp", "azure", "linux",
		"postgres", "mysql", "redis", "kafka", "rabbitmq", "elasticsearch", "mongodb", "graphql", "grpc", "rest",
		"machine-learning", "pandas", "numpy", "pytorch", "tensorflow", "spark", "airflow", "dbt", "jupyter", "sql",
		"git", "ci-cd", "testing", "security", "networking", "wasm", "webgl", "css", "html", "accessibility",
	}
}
