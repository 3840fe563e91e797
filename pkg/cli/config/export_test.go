package config

import "time"

// NewSchedulerForTest creates a Scheduler config for testing purposes
func NewSchedulerForTest(pollInterval time.Duration, tickConcurrency, maxAttempts int, confirmTimeout time.Duration) *Scheduler {
	return &Scheduler{
		pollInterval:    pollInterval,
		tickConcurrency: tickConcurrency,
		maxAttempts:     maxAttempts,
		confirmTimeout:  confirmTimeout,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewGuildsForTest creates a Guilds config for testing purposes
func NewGuildsForTest(path string) *Guilds {
	return &Guilds{path: path}
}
