package worker

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
	"github.com/robfig/cron/v3"
)

// RelayPoller relays new posts of one guild
type RelayPoller interface {
	Poll(ctx context.Context, guildID string) (int, error)
}

// PostRelayWorker runs one cron job per guild with relay enabled
type PostRelayWorker struct {
	poller   RelayPoller
	registry *model.GuildRegistry
	cron     *cron.Cron
}

// NewPostRelayWorker creates a new worker. Overlapping runs of one guild are skipped.
func NewPostRelayWorker(poller RelayPoller, registry *model.GuildRegistry) *PostRelayWorker {
	return &PostRelayWorker{
		poller:   poller,
		registry: registry,
		cron: cron.New(
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
	}
}

// Start registers a job per relay enabled guild and starts the scheduler
func (w *PostRelayWorker) Start(ctx context.Context) error {
	jobCtx := context.WithoutCancel(ctx)
	jobs := 0

	for _, guild := range w.registry.List() {
		if !guild.Relay.Enabled() || guild.Subreddit == "" {
			continue
		}

		guildID := guild.ID
		spec := guild.Relay.CronSpec()
		if _, err := w.cron.AddFunc(spec, func() { w.poll(jobCtx, guildID) }); err != nil {
			return goerr.Wrap(err, "failed to register relay job",
				goerr.V("guild_id", guildID),
				goerr.V("schedule", spec))
		}
		jobs++

		logging.From(ctx).Info("Post relay registered",
			"guild_id", guildID,
			"subreddit", guild.Subreddit,
			"schedule", spec)
	}

	if jobs == 0 {
		logging.From(ctx).Info("Post relay disabled: no guild has a relay channel")
		return nil
	}

	w.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (w *PostRelayWorker) Stop() {
	<-w.cron.Stop().Done()
	logging.Default().Info("Post relay worker stopped")
}

// Jobs returns the number of registered jobs
func (w *PostRelayWorker) Jobs() int {
	return len(w.cron.Entries())
}

func (w *PostRelayWorker) poll(ctx context.Context, guildID string) {
	sent, err := w.poller.Poll(ctx, guildID)
	if err != nil {
		errutil.Handle(ctx, err, "Post relay failed")
		return
	}
	if sent > 0 {
		logging.From(ctx).Info("Posts relayed", "guild_id", guildID, "count", sent)
	}
}

// cronLogger sends scheduler messages to the process logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.Default().Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Default().Error(msg, append([]any{"error", err.Error()}, keysAndValues...)...)
}

// RunOnce polls every relay enabled guild immediately
func (w *PostRelayWorker) RunOnce(ctx context.Context) {
	for _, guild := range w.registry.List() {
		if guild.Relay.Enabled() && guild.Subreddit != "" {
			w.poll(ctx, guild.ID)
		}
	}
}
