package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanshika/netviz/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	name  TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS nodes (
	dataset TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	id      TEXT NOT NULL,
	weight  REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (dataset, ordinal)
);
CREATE TABLE IF NOT EXISTS edges (
	dataset TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	source  TEXT NOT NULL,
	target  TEXT NOT NULL,
	weight  REAL NOT NULL DEFAULT 1,
	PRIMARY KEY (dataset, ordinal)
);
`

// SQLiteStore keeps datasets in a SQLite database. It serves as a Source for
// the viewer and as an ingestion target.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY on concurrent ingestion
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Kind() string { return KindSQLite }

func (s *SQLiteStore) Load(ctx context.Context, name string) (domain.Graph, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM datasets WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Graph{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}
	if err != nil {
		return domain.Graph{}, fmt.Errorf("lookup dataset %s: %w", name, err)
	}

	var g domain.Graph

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, weight FROM nodes WHERE dataset = ? ORDER BY ordinal`, name)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("query nodes of %s: %w", name, err)
	}
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(&n.ID, &n.Weight); err != nil {
			rows.Close()
			return domain.Graph{}, fmt.Errorf("scan node of %s: %w", name, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Graph{}, fmt.Errorf("iterate nodes of %s: %w", name, err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT source, target, weight FROM edges WHERE dataset = ? ORDER BY ordinal`, name)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("query edges of %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Weight); err != nil {
			return domain.Graph{}, fmt.Errorf("scan edge of %s: %w", name, err)
		}
		g.Edges = append(g.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Graph{}, fmt.Errorf("iterate edges of %s: %w", name, err)
	}
	return g, nil
}

func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM datasets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan dataset name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveDataset replaces dataset name with g inside one transaction.
func (s *SQLiteStore) SaveDataset(ctx context.Context, name, title string, g domain.Graph) error {
	if name == "" {
		return errors.New("dataset name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM nodes WHERE dataset = ?`,
		`DELETE FROM edges WHERE dataset = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, name); err != nil {
			return fmt.Errorf("clear dataset %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, title) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET title = excluded.title`, name, title); err != nil {
		return fmt.Errorf("upsert dataset %s: %w", name, err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (dataset, ordinal, id, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare nodes: %w", err)
	}
	defer nodeStmt.Close()
	for i, n := range g.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, name, i, n.ID, n.Weight); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (dataset, ordinal, source, target, weight) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edges: %w", err)
	}
	defer edgeStmt.Close()
	for i, e := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, name, i, e.Source, e.Target, e.Weight); err != nil {
			return fmt.Errorf("insert edge %s: %w", e.ID(), err)
		}
	}

	return tx.Commit()
}
