package generator

// Config drives the synthetic data generator.
type Config struct {
	NumTags  int
	NumEdges int
	// Clusters splits tags into disjoint groups; edges never cross groups.
	Clusters int
	// Isolated tags are added without any co-occurrence.
	Isolated int
	// HubChance is the probability an edge endpoint is drawn from tags that
	// already have edges, which produces hub tags.
	HubChance float64
	MaxWeight int
	Seed      int64
}

// DefaultConfig returns settings close to the bundled tag concurrence sample.
func DefaultConfig() Config {
	return Config{
		NumTags:   60,
		NumEdges:  140,
		Clusters:  3,
		Isolated:  2,
		HubChance: 0.45,
		MaxWeight: 5,
		Seed:      42,
	}
}
