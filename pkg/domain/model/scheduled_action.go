package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/types"
)

// ScheduledActionID is the store-assigned identifier of a scheduled action
type ScheduledActionID string

// NewScheduledActionID generates a time-ordered identifier
func NewScheduledActionID() ScheduledActionID {
	return ScheduledActionID(uuid.Must(uuid.NewV7()).String())
}

func (id ScheduledActionID) String() string {
	return string(id)
}

// ScheduledAction is a deferred lock or unlock of a single post in one guild.
// A record exists while the action is pending or due; execution deletes it.
type ScheduledAction struct {
	ID            ScheduledActionID
	Type          types.ActionType
	PostLink      string
	DueAt         time.Time
	GuildID       string
	ScheduledBy   string // display name of the requesting moderator
	ScheduledByID string // Discord user ID of the requesting moderator
	ChannelID     string // notifications go here
	CreatedAt     time.Time
	AttemptCount  int
	LastError     string
}

// IsDue reports whether the action should run at now
func (a *ScheduledAction) IsDue(now time.Time) bool {
	return !a.DueAt.After(now)
}

// Key returns the deduplication tuple of the action
func (a *ScheduledAction) Key() ActionKey {
	return ActionKey{GuildID: a.GuildID, PostLink: a.PostLink, Type: a.Type}
}

// ActionKey identifies the logically unique slot of a scheduled action
type ActionKey struct {
	GuildID  string
	PostLink string
	Type     types.ActionType
}

func (k ActionKey) String() string {
	return k.GuildID + "|" + k.Type.String() + "|" + k.PostLink
}

var (
	// ErrInvalidDueTime is returned when a due time string is not a base-10 integer
	ErrInvalidDueTime = goerr.New("invalid due time")
	// ErrDueTimeNotFuture is returned when a due time is not strictly after now
	ErrDueTimeNotFuture = goerr.New("due time is not in the future")
)

// millisecondThreshold separates epoch seconds from epoch milliseconds
const millisecondThreshold = 1_000_000_000_000

// NormalizeEpochMillis interprets values below 10^12 as seconds and returns milliseconds
func NormalizeEpochMillis(v int64) int64 {
	if v < millisecondThreshold {
		return v * 1000
	}
	return v
}

// ParseDueTime parses a user supplied epoch timestamp in seconds or milliseconds.
// The result must be strictly after now.
func ParseDueTime(s string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidDueTime, "due time must be an integer epoch",
			goerr.V("input", s))
	}

	due := time.UnixMilli(NormalizeEpochMillis(v))
	if !due.After(now) {
		return time.Time{}, goerr.Wrap(ErrDueTimeNotFuture, "due time must be in the future",
			goerr.V("input", s),
			goerr.V("due_at", due),
			goerr.V("now", now))
	}
	return due, nil
}
