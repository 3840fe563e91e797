package reddit

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "modbridge/1.0"

// Credentials hold the script app credentials of the moderator account
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// client implements Service interface
type client struct {
	api       *reddit.Client
	userAgent string
	baseURL   string
	tokenURL  string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithUserAgent sets the User-Agent header sent to Reddit
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

// WithEndpoints overrides the API and token URLs
func WithEndpoints(baseURL, tokenURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
		c.tokenURL = tokenURL
	}
}

// New creates a new Reddit service with password grant credentials
func New(creds Credentials, opts ...Option) (Service, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, goerr.New("Reddit client ID and secret are required")
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, goerr.New("Reddit username and password are required")
	}

	c := &client{
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	redditOpts := []reddit.Opt{reddit.WithUserAgent(c.userAgent)}
	if c.baseURL != "" {
		redditOpts = append(redditOpts, reddit.WithBaseURL(c.baseURL))
	}
	if c.tokenURL != "" {
		redditOpts = append(redditOpts, reddit.WithTokenURL(c.tokenURL))
	}

	api, err := reddit.NewClient(reddit.Credentials{
		ID:       creds.ClientID,
		Secret:   creds.ClientSecret,
		Username: creds.Username,
		Password: creds.Password,
	}, redditOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create reddit client")
	}
	c.api = api

	return c, nil
}

func (c *client) GetPost(ctx context.Context, link string) (*Post, error) {
	id, err := ExtractPostID(link)
	if err != nil {
		return nil, err
	}

	result, _, err := c.api.Post.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrPostNotFound, "post not found", goerr.V("post_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get post", goerr.V("post_id", id))
	}
	if result == nil || result.Post == nil {
		return nil, goerr.Wrap(ErrPostNotFound, "post not found", goerr.V("post_id", id))
	}

	return toPost(result.Post), nil
}

func (c *client) LockPost(ctx context.Context, link string) error {
	id, err := ExtractPostID(link)
	if err != nil {
		return err
	}

	if _, err := c.api.Post.Lock(ctx, toFullID(id)); err != nil {
		return goerr.Wrap(err, "failed to lock post", goerr.V("post_id", id))
	}
	return nil
}

func (c *client) UnlockPost(ctx context.Context, link string) error {
	id, err := ExtractPostID(link)
	if err != nil {
		return err
	}

	if _, err := c.api.Post.Unlock(ctx, toFullID(id)); err != nil {
		return goerr.Wrap(err, "failed to unlock post", goerr.V("post_id", id))
	}
	return nil
}

func (c *client) ListNewPosts(ctx context.Context, subreddit string, limit int) ([]*Post, error) {
	posts, _, err := c.api.Subreddit.NewPosts(ctx, subreddit, &reddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list new posts", goerr.V("subreddit", subreddit))
	}

	result := make([]*Post, 0, len(posts))
	for _, p := range posts {
		result = append(result, toPost(p))
	}
	return result, nil
}

func (c *client) SubmitSelfPost(ctx context.Context, req SubmitRequest) (*Post, error) {
	submitted, _, err := c.api.Post.SubmitText(ctx, reddit.SubmitTextRequest{
		Subreddit: req.Subreddit,
		Title:     req.Title,
		Text:      req.Body,
		FlairID:   req.FlairID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit post",
			goerr.V("subreddit", req.Subreddit),
			goerr.V("title", req.Title))
	}

	// Submit only returns identifiers; fetch the post for permalink and author
	result, _, err := c.api.Post.Get(ctx, submitted.ID)
	if err != nil || result == nil || result.Post == nil {
		return &Post{
			ID:        submitted.ID,
			FullID:    submitted.FullID,
			Title:     req.Title,
			Body:      req.Body,
			URL:       submitted.URL,
			Subreddit: req.Subreddit,
		}, nil
	}
	return toPost(result.Post), nil
}

func toPost(p *reddit.Post) *Post {
	post := &Post{
		ID:        p.ID,
		FullID:    p.FullID,
		Title:     p.Title,
		Author:    p.Author,
		Body:      p.Body,
		Permalink: p.Permalink,
		URL:       p.URL,
		Subreddit: p.SubredditName,
		Locked:    p.Locked,
	}
	if p.Created != nil {
		post.CreatedAt = p.Created.Time
	}
	return post
}

func isNotFound(err error) bool {
	var respErr *reddit.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
