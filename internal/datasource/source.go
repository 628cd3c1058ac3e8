// Package datasource loads viewer datasets from files, HTTP endpoints, SQLite
// databases and Neo4j, and composes those sources into fallback chains and
// caches.
package datasource

import (
	"context"

	"github.com/vanshika/netviz/internal/domain"
)

// Source kinds, used as metric labels.
const (
	KindFile   = "file"
	KindRemote = "remote"
	KindSQLite = "sqlite"
	KindGraph  = "neo4j"
	KindChain  = "fallback"
	KindCache  = "cache"
)

// Source loads datasets by name. Implementations report unknown names with
// an error wrapping domain.ErrDatasetNotFound.
type Source interface {
	Kind() string
	Load(ctx context.Context, name string) (domain.Graph, error)
	// Names lists the datasets the source can serve. Sources that cannot
	// enumerate their datasets return nil.
	Names(ctx context.Context) ([]string, error)
}
