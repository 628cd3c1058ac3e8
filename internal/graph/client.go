package graph

import (
	"context"
	"errors"
)

// Client is the contract the dataset repository needs from a graph database.
type Client interface {
	// ExecuteWrite runs cypher inside a managed write transaction.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	// ExecuteRead runs cypher inside a managed read transaction.
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the records returned by a query.
type Result struct {
	Records []Record
}

// Record maps return keys to values.
type Record map[string]any

// String returns the string stored under key, or "" when absent or of another type.
func (r Record) String(key string) string {
	v, _ := r[key].(string)
	return v
}

// Float returns the numeric value stored under key as a float64.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
