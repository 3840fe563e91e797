package memory

import (
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	scheduledAction *scheduledActionRepository
	relayCursor     *relayCursorRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		scheduledAction: newScheduledActionRepository(),
		relayCursor:     newRelayCursorRepository(),
	}
}

func (m *Memory) ScheduledAction() interfaces.ScheduledActionRepository {
	return m.scheduledAction
}

func (m *Memory) RelayCursor() interfaces.RelayCursorRepository {
	return m.relayCursor
}

func (m *Memory) Close() error {
	return nil
}
