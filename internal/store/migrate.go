package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL,
		path TEXT NOT NULL,
		query TEXT NOT NULL DEFAULT '',
		status_code INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_endpoint ON requests(endpoint);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_started ON requests(started_at);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
