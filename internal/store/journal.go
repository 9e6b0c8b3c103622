package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/genelens/genelens/ensembl"
)

// RequestEntry is one journaled upstream request.
type RequestEntry struct {
	ID         string    `json:"id" yaml:"id"`
	Endpoint   string    `json:"endpoint" yaml:"endpoint"`
	Path       string    `json:"path" yaml:"path"`
	Query      string    `json:"query,omitempty" yaml:"query,omitempty"`
	StatusCode int       `json:"status_code" yaml:"status_code"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
}

// RequestQuery selects journal entries.
type RequestQuery struct {
	All      bool
	Endpoint string
	Prefix   string
	// Limit caps listed entries. Zero means no limit. Ignored by count and
	// reset.
	Limit int
}

// Validate requires at least one selector and a non-negative limit.
func (q RequestQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", q.Limit)
	}
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Endpoint) != "" {
		return nil
	}
	if strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --endpoint, or --prefix")
}

func (q RequestQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	if endpoint := strings.TrimSpace(q.Endpoint); endpoint != "" {
		return "WHERE endpoint = ?", []any{endpoint}, nil
	}
	prefix := strings.TrimSpace(q.Prefix)
	if prefix == "" {
		return "", nil, errors.New("prefix is required")
	}
	return "WHERE endpoint LIKE ?", []any{prefix + "%"}, nil
}

// RecordRequest appends one entry to the journal.
func (s *Store) RecordRequest(ctx context.Context, entry RequestEntry) error {
	if err := s.ready(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("entry id is required")
	}

	var errText sql.NullString
	if entry.Error != "" {
		errText = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO requests (id, endpoint, path, query, status_code, error, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Endpoint, entry.Path, entry.Query, entry.StatusCode, errText,
		entry.DurationMS, entry.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	return nil
}

// ListRequests returns matching entries, newest first.
func (s *Store) ListRequests(ctx context.Context, q RequestQuery) ([]RequestEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	limit := ""
	if q.Limit > 0 {
		limit = "LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, endpoint, path, query, status_code, error, duration_ms, started_at
		FROM requests
		%s
		ORDER BY started_at DESC, id
		%s
	`, where, limit), args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []RequestEntry{}
	for rows.Next() {
		var (
			entry     RequestEntry
			errText   sql.NullString
			startedAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Endpoint, &entry.Path, &entry.Query,
			&entry.StatusCode, &errText, &entry.DurationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan requests: %w", err)
		}
		entry.Error = errText.String
		entry.StartedAt = time.UnixMilli(startedAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return entries, nil
}

// CountRequests returns the number of matching entries.
func (s *Store) CountRequests(ctx context.Context, q RequestQuery) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM requests
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

// ResetRequests deletes matching entries and returns how many were removed.
func (s *Store) ResetRequests(ctx context.Context, q RequestQuery) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM requests
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset requests: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset requests: %w", err)
	}
	return affected, nil
}

// EntryFromRecord converts a completed client request into a journal entry.
func EntryFromRecord(record ensembl.RequestRecord) RequestEntry {
	entry := RequestEntry{
		ID:         record.ID,
		Endpoint:   record.Endpoint,
		Path:       record.Path,
		Query:      record.Query,
		StatusCode: record.StatusCode,
		DurationMS: record.Duration.Milliseconds(),
		StartedAt:  record.StartedAt,
	}
	if record.Err != nil {
		entry.Error = record.Err.Error()
	}
	return entry
}

const journalWriteTimeout = 2 * time.Second

// Journal records every completed Ensembl request in the store.
type Journal struct {
	store  *Store
	logger *zap.Logger
}

// NewJournal returns an ensembl.Observer backed by s. Write failures are
// logged and otherwise ignored.
func NewJournal(s *Store, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{store: s, logger: logger}
}

// ObserveRequest implements ensembl.Observer.
func (j *Journal) ObserveRequest(ctx context.Context, record ensembl.RequestRecord) {
	// Cancelled requests are journaled too.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()

	if err := j.store.RecordRequest(ctx, EntryFromRecord(record)); err != nil {
		j.logger.Warn("Failed to journal request",
			zap.String("request_id", record.ID),
			zap.String("endpoint", record.Endpoint),
			zap.Error(err))
	}
}

var _ ensembl.Observer = (*Journal)(nil)
