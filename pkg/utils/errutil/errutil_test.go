package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("nil error returns nil", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(ctx, nil, "nothing"))
	})

	t.Run("returns the same error", func(t *testing.T) {
		base := errors.New("boom")
		err := goerr.Wrap(base, "wrapped", goerr.V("guild_id", "G1"))
		got := errutil.Handle(ctx, err, "failed")
		gt.Error(t, got).Is(base)
	})
}

func TestHandleReportsToSentry(t *testing.T) {
	transport := &sentry.MockTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: transport})
	gt.NoError(t, err).Required()
	ctx := sentry.SetHubOnContext(context.Background(), sentry.NewHub(client, sentry.NewScope()))

	cause := goerr.Wrap(errors.New("boom"), "failed to lock post",
		goerr.V("guild_id", "G1"),
		goerr.V("post_link", "https://www.reddit.com/r/golang/comments/abc123/"))
	errutil.Handle(ctx, cause, "poll failed")

	events := transport.Events()
	gt.Array(t, events).Length(1).Required()
	gt.Value(t, events[0].Tags["message"]).Equal("poll failed")

	values := events[0].Contexts["goerr"]
	gt.Value(t, values["guild_id"]).Equal("G1")
	gt.Value(t, values["post_link"]).Equal("https://www.reddit.com/r/golang/comments/abc123/")
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
}
