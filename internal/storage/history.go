package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HistoryEntry is one remembered query.
type HistoryEntry struct {
	FirstUsed time.Time
	LastUsed  time.Time
	Query     string
	UseCount  int
}

// RecordQuery remembers a committed query, bumping its use count if it was
// seen before. Queries are stored trimmed.
func (s *SQLiteStorage) RecordQuery(ctx context.Context, query string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(query, "query"); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (query_text, use_count, first_used_at, last_used_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(query_text) DO UPDATE SET
			use_count = use_count + 1,
			last_used_at = excluded.last_used_at
	`, strings.TrimSpace(query), now, now)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// RecentQueries returns up to limit queries, most recently used first.
func (s *SQLiteStorage) RecentQueries(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT query_text, use_count, first_used_at, last_used_at
		FROM search_history
		ORDER BY last_used_at DESC, use_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Query, &e.UseCount, &e.FirstUsed, &e.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// ClearHistory forgets every recorded query and reports how many were removed.
func (s *SQLiteStorage) ClearHistory(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM search_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}
	return n, nil
}
