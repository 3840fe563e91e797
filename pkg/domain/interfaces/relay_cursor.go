package interfaces

import (
	"context"
	"time"
)

// RelayCursorRepository stores the per-guild watermark of relayed posts
type RelayCursorRepository interface {
	// Get returns the zero time when no cursor has been stored
	Get(ctx context.Context, guildID string) (time.Time, error)
	Put(ctx context.Context, guildID string, lastCreatedAt time.Time) error
}
