package mem

import (
	"context"
	"sync"
	"time"

	"medication_reminder/internal/domain/history"
)

// HistoryRepository keeps session outcomes in memory. Unlike the SQL
// repository it is unbounded; ListRecent applies the limit.
type HistoryRepository struct {
	Now func() time.Time

	mu      sync.Mutex
	entries []history.Entry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{Now: time.Now}
}

var _ history.Repository = (*HistoryRepository)(nil)

func (r *HistoryRepository) Append(_ context.Context, e *history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.CreatedAt = r.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *HistoryRepository) ListRecent(_ context.Context, limit int) ([]*history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if limit >= 0 && len(r.entries) > limit {
		start = len(r.entries) - limit
	}
	out := make([]*history.Entry, 0, len(r.entries)-start)
	for i := start; i < len(r.entries); i++ {
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}
