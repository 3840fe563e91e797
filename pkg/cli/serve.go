package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/cli/config"
	discordctrl "github.com/rigcse/modbridge/pkg/controller/discord"
	httpctrl "github.com/rigcse/modbridge/pkg/controller/http"
	"github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/rigcse/modbridge/pkg/service/worker"
	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/rigcse/modbridge/pkg/utils/logging"
	"github.com/rigcse/modbridge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var guildsCfg config.Guilds
	var repoCfg config.Repository
	var discordCfg config.Discord
	var redditCfg config.Reddit
	var schedulerCfg config.Scheduler

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address for health and operator endpoints",
			Value:       ":8080",
			Sources:     cli.EnvVars("MODBRIDGE_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, guildsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, discordCfg.Flags()...)
	flags = append(flags, redditCfg.Flags()...)
	flags = append(flags, schedulerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the bot, the action poller and the HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			_, registry, err := guildsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load guild configuration")
			}
			if err := schedulerCfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid scheduler configuration")
			}
			logger.Info("Serve configuration",
				"guilds", registry.IDs(),
				"repository", repoCfg,
				"discord", discordCfg,
				"reddit", redditCfg,
				"scheduler", schedulerCfg,
			)

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			redditSvc, err := redditCfg.Configure()
			if err != nil {
				return err
			}

			session, err := discordCfg.Configure()
			if err != nil {
				return err
			}

			ucOpts := []usecase.Option{
				usecase.WithGuildRegistry(registry),
				usecase.WithReddit(redditSvc),
				usecase.WithDiscord(discord.New(session)),
			}
			ucOpts = append(ucOpts, schedulerCfg.Options()...)
			uc := usecase.New(repo, ucOpts...)

			bot := discordctrl.NewBot(session, uc)
			if err := bot.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := bot.Stop(); err != nil {
					logger.Error("failed to stop discord bot", "error", err.Error())
				}
			}()

			actionWorker := worker.NewScheduledActionWorker(uc.Action, schedulerCfg.PollInterval())
			if err := actionWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start scheduled action worker")
			}

			relayWorker := worker.NewPostRelayWorker(uc.Relay, registry)
			if err := relayWorker.Start(ctx); err != nil {
				actionWorker.Stop()
				return goerr.Wrap(err, "failed to start post relay worker")
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(
					httpctrl.WithGuildRegistry(registry),
					httpctrl.WithActionLister(uc.Action),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			stopWorkers := func() {
				relayWorker.Stop()
				actionWorker.Stop()
			}

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				stopWorkers()
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				// Let in-flight ticks finish before closing the store
				stopWorkers()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
