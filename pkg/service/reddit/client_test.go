package reddit_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

func TestNew(t *testing.T) {
	t.Run("returns error when client credentials are missing", func(t *testing.T) {
		_, err := reddit.New(reddit.Credentials{Username: "u", Password: "p"})
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when account is missing", func(t *testing.T) {
		_, err := reddit.New(reddit.Credentials{ClientID: "id", ClientSecret: "secret"})
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when credentials are provided", func(t *testing.T) {
		svc, err := reddit.New(reddit.Credentials{
			ClientID:     "id",
			ClientSecret: "secret",
			Username:     "u",
			Password:     "p",
		}, reddit.WithUserAgent("modbridge-test/0.1"))
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestGetPost_InvalidLink(t *testing.T) {
	svc, err := reddit.New(reddit.Credentials{
		ClientID: "id", ClientSecret: "secret", Username: "u", Password: "p",
	})
	gt.NoError(t, err).Required()

	// Rejected before any request is sent
	_, err = svc.GetPost(context.Background(), "https://reddit.com/r/golang")
	gt.Error(t, err).Is(reddit.ErrInvalidLink)

	err = svc.LockPost(context.Background(), "not a link")
	gt.Error(t, err).Is(reddit.ErrInvalidLink)
}

func TestIntegration(t *testing.T) {
	creds := reddit.Credentials{
		ClientID:     os.Getenv("TEST_REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("TEST_REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("TEST_REDDIT_USERNAME"),
		Password:     os.Getenv("TEST_REDDIT_PASSWORD"),
	}
	subreddit := os.Getenv("TEST_REDDIT_SUBREDDIT")
	if creds.ClientID == "" || subreddit == "" {
		t.Skip("TEST_REDDIT_CLIENT_ID or TEST_REDDIT_SUBREDDIT is not set")
	}

	ctx := context.Background()
	svc, err := reddit.New(creds)
	gt.NoError(t, err).Required()

	posts, err := svc.ListNewPosts(ctx, subreddit, 5)
	gt.NoError(t, err).Required()
	if len(posts) == 0 {
		t.Skip("subreddit has no posts")
	}

	t.Run("GetPost resolves a listed post", func(t *testing.T) {
		post, err := svc.GetPost(ctx, posts[0].Link())
		gt.NoError(t, err).Required()
		gt.Value(t, post.ID).Equal(posts[0].ID)
		t.Logf("post: %s locked=%v", post.Title, post.Locked)
	})
}
