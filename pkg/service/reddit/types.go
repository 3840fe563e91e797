package reddit

import (
	"context"
	"time"
)

// Service provides interface to the Reddit API for moderation operations
type Service interface {
	// GetPost fetches a post by its link. Returns ErrPostNotFound when it does not exist.
	GetPost(ctx context.Context, link string) (*Post, error)

	// LockPost locks a post. Locking an already locked post succeeds.
	LockPost(ctx context.Context, link string) error

	// UnlockPost unlocks a post. Unlocking an unlocked post succeeds.
	UnlockPost(ctx context.Context, link string) error

	// ListNewPosts returns up to limit of the newest posts of a subreddit, newest first
	ListNewPosts(ctx context.Context, subreddit string, limit int) ([]*Post, error)

	// SubmitSelfPost creates a text post and returns it
	SubmitSelfPost(ctx context.Context, req SubmitRequest) (*Post, error)
}

// Post represents a Reddit submission
type Post struct {
	ID        string // base36 ID, e.g. "abc123"
	FullID    string // fullname, e.g. "t3_abc123"
	Title     string
	Author    string
	Body      string
	Permalink string // path starting with /r/
	URL       string
	Subreddit string
	Locked    bool
	CreatedAt time.Time
}

// Link returns the canonical URL of the post
func (p *Post) Link() string {
	if p.Permalink == "" {
		return p.URL
	}
	return BaseURL + p.Permalink
}

// SubmitRequest describes a self post to submit
type SubmitRequest struct {
	Subreddit string
	Title     string
	Body      string
	FlairID   string
}
