package memory

import (
	"context"
	"sync"
	"time"
)

type relayCursorRepository struct {
	mu      sync.RWMutex
	cursors map[string]time.Time
}

func newRelayCursorRepository() *relayCursorRepository {
	return &relayCursorRepository{
		cursors: make(map[string]time.Time),
	}
}

func (r *relayCursorRepository) Get(ctx context.Context, guildID string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cursors[guildID], nil
}

func (r *relayCursorRepository) Put(ctx context.Context, guildID string, lastCreatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cursors[guildID] = lastCreatedAt.UTC()
	return nil
}
