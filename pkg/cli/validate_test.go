package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/cli"
)

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "modbridge.toml")
	content := `
[[guild]]
id = "111"
name = "Papers"
subreddit = "MachineLearning"
moderator_roles = ["222"]

  [guild.relay]
  channel = "333"
  schedule = "@every 1m"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"modbridge", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "modbridge.toml")

	// Invalid: guild without moderator roles
	content := `
[[guild]]
id = "111"
subreddit = "MachineLearning"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"modbridge", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing.toml")
	err := cli.Run(context.Background(), []string{"modbridge", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}
