package memory

import "github.com/rigcse/modbridge/pkg/domain/interfaces"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = interfaces.ErrNotFound
)
