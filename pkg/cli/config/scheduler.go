package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// DefaultPollInterval is how often due actions are looked up
const DefaultPollInterval = 20 * time.Second

// Scheduler holds CLI flags for the action poller
type Scheduler struct {
	pollInterval    time.Duration
	tickConcurrency int
	maxAttempts     int
	confirmTimeout  time.Duration
}

func (x *Scheduler) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between due action lookups",
			Category:    "Scheduler",
			Value:       DefaultPollInterval,
			Destination: &x.pollInterval,
			Sources:     cli.EnvVars("MODBRIDGE_POLL_INTERVAL"),
		},
		&cli.IntFlag{
			Name:        "tick-concurrency",
			Usage:       "Number of due actions executed in parallel",
			Category:    "Scheduler",
			Value:       usecase.DefaultTickConcurrency,
			Destination: &x.tickConcurrency,
			Sources:     cli.EnvVars("MODBRIDGE_TICK_CONCURRENCY"),
		},
		&cli.IntFlag{
			Name:        "max-attempts",
			Usage:       "Attempts before a failing action is dropped (0 retries forever)",
			Category:    "Scheduler",
			Value:       usecase.DefaultMaxAttempts,
			Destination: &x.maxAttempts,
			Sources:     cli.EnvVars("MODBRIDGE_MAX_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "confirm-timeout",
			Usage:       "How long an overwrite confirmation waits for an answer",
			Category:    "Scheduler",
			Value:       usecase.DefaultConfirmTimeout,
			Destination: &x.confirmTimeout,
			Sources:     cli.EnvVars("MODBRIDGE_CONFIRM_TIMEOUT"),
		},
	}
}

func (x Scheduler) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("poll-interval", x.pollInterval),
		slog.Int("tick-concurrency", x.tickConcurrency),
		slog.Int("max-attempts", x.maxAttempts),
		slog.Duration("confirm-timeout", x.confirmTimeout),
	)
}

// Validate checks the flag values
func (x *Scheduler) Validate() error {
	if x.pollInterval <= 0 {
		return goerr.New("poll-interval must be positive", goerr.V("poll_interval", x.pollInterval))
	}
	if x.tickConcurrency < 1 {
		return goerr.New("tick-concurrency must be at least 1", goerr.V("tick_concurrency", x.tickConcurrency))
	}
	if x.maxAttempts < 0 {
		return goerr.New("max-attempts must not be negative", goerr.V("max_attempts", x.maxAttempts))
	}
	if x.confirmTimeout <= 0 {
		return goerr.New("confirm-timeout must be positive", goerr.V("confirm_timeout", x.confirmTimeout))
	}
	return nil
}

// PollInterval returns the interval between due action lookups
func (x *Scheduler) PollInterval() time.Duration {
	return x.pollInterval
}

// Options returns use case options for the scheduler settings
func (x *Scheduler) Options() []usecase.Option {
	return []usecase.Option{
		usecase.WithTickConcurrency(x.tickConcurrency),
		usecase.WithMaxAttempts(x.maxAttempts),
		usecase.WithConfirmTimeout(x.confirmTimeout),
	}
}
