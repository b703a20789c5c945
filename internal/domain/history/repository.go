// internal/domain/history/repository.go
package history

import "context"

// Repository persists session outcomes so the log survives a restart.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// ListRecent returns at most limit entries, oldest first.
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
