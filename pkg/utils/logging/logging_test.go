package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

func TestFrom(t *testing.T) {
	t.Run("returns default logger without context value", func(t *testing.T) {
		gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
	})

	t.Run("returns logger stored in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := logging.With(context.Background(), logger)

		logging.From(ctx).Info("hello", "guild_id", "G1")
		gt.String(t, buf.String()).Contains("guild_id=G1")
	})
}
