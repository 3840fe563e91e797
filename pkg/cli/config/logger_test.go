package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/cli/config"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("json to rotated file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "modbridge.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "secret_token", "abc123")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains(`"msg":"hello"`)
		gt.Bool(t, len(data) > 0).True()
	})

	t.Run("console to stdout", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("info", "console", "stdout").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})
}
