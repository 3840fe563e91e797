package reddit

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidLink is returned when a link does not contain a post ID
	ErrInvalidLink = goerr.New("invalid post link")

	// ErrPostNotFound is returned when the post does not exist or was removed
	ErrPostNotFound = goerr.New("post not found")
)
