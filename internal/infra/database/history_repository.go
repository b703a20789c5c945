package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medication_reminder/internal/domain/history"
)

// ErrDuplicateHistoryEntry is returned when an entry with the same session ID exists.
var ErrDuplicateHistoryEntry = fmt.Errorf("duplicate session history entry")

type HistoryRepository struct {
	db  *DB
	Now func() time.Time
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db, Now: time.Now}
}

var _ history.Repository = (*HistoryRepository)(nil)

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	query := r.db.rebind(`INSERT INTO session_history (id, recorded_at, outcome, created_at)
               VALUES (?, ?, ?, ?)`)
	createdAt := r.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, e.ID, e.Timestamp, string(e.Outcome), createdAt); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key") {
			return ErrDuplicateHistoryEntry
		}
		return fmt.Errorf("error appending session history: %w", err)
	}
	e.CreatedAt = createdAt
	return nil
}

// ListRecent returns the newest limit entries, oldest first.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]*history.Entry, error) {
	query := r.db.rebind(`SELECT id, recorded_at, outcome, created_at
               FROM session_history
               ORDER BY created_at DESC, id DESC
               LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying session history: %w", err)
	}
	defer rows.Close()

	entries := make([]*history.Entry, 0, limit)
	for rows.Next() {
		e := history.Entry{}
		var outcome string
		if err := rows.Scan(&e.ID, &e.Timestamp, &outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning session history row: %w", err)
		}
		e.Outcome = history.Outcome(outcome)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session history rows: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
