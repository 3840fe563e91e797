package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

func relayPost(id string, created time.Time) *reddit.Post {
	return &reddit.Post{
		ID:        id,
		Title:     "post " + id,
		Author:    "bob",
		Permalink: "/r/golang/comments/" + id + "/t/",
		Subreddit: "golang",
		CreatedAt: created,
	}
}

func TestRelay_FirstPollSetsCursor(t *testing.T) {
	f := newScheduleFixture(t, nil)
	ctx := context.Background()

	listed := false
	f.reddit.listNewPostsFn = func(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
		listed = true
		return nil, nil
	}

	sent, err := f.uc.Relay.Poll(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Value(t, sent).Equal(0)
	gt.Bool(t, listed).False()

	cursor, err := f.repo.RelayCursor().Get(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Bool(t, cursor.Equal(f.clock.Now().Add(-time.Millisecond))).True()
}

func TestRelay_FirstPollKeepsPostsOfSameSecond(t *testing.T) {
	f := newScheduleFixture(t, nil)
	ctx := context.Background()
	second := f.clock.Now()
	f.clock.Advance(700 * time.Millisecond)

	var listing []*reddit.Post
	f.reddit.listNewPostsFn = func(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
		return listing, nil
	}

	sent, err := f.uc.Relay.Poll(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Value(t, sent).Equal(0)

	listing = []*reddit.Post{
		relayPost("b", second),
		relayPost("a", second.Add(-time.Second)),
	}
	sent, err = f.uc.Relay.Poll(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Value(t, sent).Equal(1)

	msgs := f.discord.messages()
	gt.Array(t, msgs).Length(1).Required()
	gt.Value(t, msgs[0].Embeds[0].Title).Equal("post b")
}

func TestRelay_SendsNewerPostsOldestFirst(t *testing.T) {
	f := newScheduleFixture(t, nil)
	ctx := context.Background()
	now := f.clock.Now()

	gt.NoError(t, f.repo.RelayCursor().Put(ctx, "G1", now)).Required()

	// Listing is newest first
	f.reddit.listNewPostsFn = func(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
		gt.Value(t, subreddit).Equal("golang")
		gt.Value(t, limit).Equal(25)
		return []*reddit.Post{
			relayPost("c", now.Add(3*time.Minute)),
			relayPost("b", now.Add(2*time.Minute)),
			relayPost("a", now.Add(-time.Minute)),
		}, nil
	}

	sent, err := f.uc.Relay.Poll(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Value(t, sent).Equal(2)

	msgs := f.discord.messages()
	gt.Array(t, msgs).Length(2)
	gt.Value(t, msgs[0].ChannelID).Equal("C-relay")
	gt.Value(t, msgs[0].Content).Equal("**New Post Alert !!**")
	gt.Value(t, msgs[0].Embeds[0].Title).Equal("post b")
	gt.Value(t, msgs[1].Embeds[0].Title).Equal("post c")
	gt.Value(t, msgs[0].Embeds[0].URL).Equal("https://reddit.com/r/golang/comments/b/t/")

	cursor, err := f.repo.RelayCursor().Get(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Bool(t, cursor.Equal(now.Add(3*time.Minute))).True()

	// Same listing again sends nothing
	sent, err = f.uc.Relay.Poll(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Value(t, sent).Equal(0)
	gt.Array(t, f.discord.messages()).Length(2)
}

func TestRelay_SendFailureKeepsCursor(t *testing.T) {
	f := newScheduleFixture(t, nil)
	ctx := context.Background()
	now := f.clock.Now()

	gt.NoError(t, f.repo.RelayCursor().Put(ctx, "G1", now)).Required()
	f.reddit.listNewPostsFn = func(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
		return []*reddit.Post{relayPost("a", now.Add(time.Minute))}, nil
	}
	f.discord.sendErr = errors.New("missing access")

	_, err := f.uc.Relay.Poll(ctx, "G1")
	gt.Value(t, err).NotNil()

	cursor, err := f.repo.RelayCursor().Get(ctx, "G1")
	gt.NoError(t, err).Required()
	gt.Bool(t, cursor.Equal(now)).True()
}

func TestRelay_UnknownGuild(t *testing.T) {
	f := newScheduleFixture(t, nil)
	_, err := f.uc.Relay.Poll(context.Background(), "G-none")
	gt.Value(t, err).NotNil()
}
