package types

import "fmt"

// ActionType is the remote operation a scheduled action performs on a post
type ActionType string

const (
	ActionTypeLock   ActionType = "lock"
	ActionTypeUnlock ActionType = "unlock"
)

// AllActionTypes returns all valid action types
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionTypeLock,
		ActionTypeUnlock,
	}
}

// IsValid checks if the action type is valid
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeLock, ActionTypeUnlock:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (t ActionType) String() string {
	return string(t)
}

// Title returns the capitalized verb, e.g. "Lock"
func (t ActionType) Title() string {
	switch t {
	case ActionTypeLock:
		return "Lock"
	case ActionTypeUnlock:
		return "Unlock"
	default:
		return string(t)
	}
}

// PastTense returns the verb in past tense, e.g. "locked"
func (t ActionType) PastTense() string {
	return string(t) + "ed"
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}
