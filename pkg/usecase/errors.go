package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for use case layer
var (
	// Request errors, reported back to the requester
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("not enough permissions")
	ErrPostNotFound   = errors.New("post not found")
	ErrWrongCommunity = errors.New("post belongs to another subreddit")
	ErrAlreadyInState = errors.New("post is already in the requested state")

	// Configuration errors
	ErrGuildNotConfigured = errors.New("guild is not configured")

	// Dependency errors
	ErrPersistence     = errors.New("persistence failed")
	ErrRemoteOperation = errors.New("remote operation failed")

	// Execution errors
	ErrUnknownActionType = errors.New("unknown action type")
)

// Context keys for error values
const (
	GuildIDKey             = "guild_id"
	ActionIDKey            = "action_id"
	ActionTypeKey          = "action_type"
	PostLinkKey            = "post_link"
	DueAtKey               = "due_at"
	AttemptCountKey        = "attempt_count"
	UserMessageKey         = "user_message"
	RequestedByIDKey       = "requested_by_id"
	SubredditKey           = "subreddit"
	ConfiguredSubredditKey = "configured_subreddit"
)

// newUserError wraps a sentinel with a message that is safe to show to the requester
func newUserError(sentinel error, userMessage string, opts ...goerr.Option) error {
	opts = append(opts, goerr.V(UserMessageKey, userMessage))
	return goerr.Wrap(sentinel, userMessage, opts...)
}

// UserMessage returns the requester facing message carried by err, or "" if none
func UserMessage(err error) string {
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return ""
	}
	if msg, ok := ge.Values()[UserMessageKey].(string); ok {
		return msg
	}
	return ""
}
