package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	ScheduledAction() ScheduledActionRepository
	RelayCursor() RelayCursorRepository

	// Close releases the underlying connection
	Close() error
}
