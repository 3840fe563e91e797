package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/rigcse/modbridge/pkg/utils/async"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

// Bot connects the gateway session and registers commands in each configured guild
type Bot struct {
	session  *discordgo.Session
	handler  *Handler
	guildIDs []string
}

func NewBot(session *discordgo.Session, uc *usecase.UseCases) *Bot {
	return &Bot{
		session:  session,
		handler:  NewHandler(uc, session),
		guildIDs: uc.Registry().IDs(),
	}
}

// Start opens the gateway connection. Commands are registered once the session is ready.
func (b *Bot) Start(ctx context.Context) error {
	logger := logging.From(ctx)

	b.session.AddHandler(b.handler.OnInteractionCreate)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord session ready", slog.String("user", r.User.Username))
		appID := r.User.ID
		async.Dispatch(ctx, func(ctx context.Context) error {
			for _, guildID := range b.guildIDs {
				if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx)); err != nil {
					errutil.Handle(ctx, goerr.Wrap(err, "failed to register commands",
						goerr.V("guild_id", guildID)), "command registration")
					continue
				}
				logger.Info("commands registered", slog.String("guild_id", guildID))
			}
			return nil
		})
	})

	if err := b.session.Open(); err != nil {
		return goerr.Wrap(err, "failed to open discord session")
	}
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	if err := b.session.Close(); err != nil {
		return goerr.Wrap(err, "failed to close discord session")
	}
	return nil
}
