package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/rigcse/modbridge/pkg/service/reddit"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

const relayAlertContent = "**New Post Alert !!**"

// RelayUseCase forwards new subreddit posts to a Discord channel
type RelayUseCase struct {
	repo     interfaces.Repository
	registry *model.GuildRegistry
	reddit   reddit.Service
	discord  discord.Service
	clock    Clock
	limit    int
}

// Poll relays posts created after the guild's cursor, oldest first, and
// advances the cursor past the last one sent. The first poll only sets the
// cursor. Returns the number of posts sent.
func (uc *RelayUseCase) Poll(ctx context.Context, guildID string) (int, error) {
	guild, err := uc.registry.Get(guildID)
	if err != nil {
		return 0, goerr.Wrap(ErrGuildNotConfigured, "relay guild not configured", goerr.V(GuildIDKey, guildID))
	}
	if !guild.Relay.Enabled() || guild.Subreddit == "" {
		return 0, nil
	}

	cursor, err := uc.repo.RelayCursor().Get(ctx, guildID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get relay cursor", goerr.V(GuildIDKey, guildID))
	}
	if cursor.IsZero() {
		// Post times have second resolution. Start just before the current
		// second so posts created during it are still relayed.
		start := uc.clock().Truncate(time.Second).Add(-time.Millisecond)
		if err := uc.repo.RelayCursor().Put(ctx, guildID, start); err != nil {
			return 0, goerr.Wrap(err, "failed to initialize relay cursor", goerr.V(GuildIDKey, guildID))
		}
		return 0, nil
	}

	posts, err := uc.reddit.ListNewPosts(ctx, guild.Subreddit, uc.limit)
	if err != nil {
		return 0, goerr.Wrap(ErrRemoteOperation, "failed to list new posts",
			goerr.V(SubredditKey, guild.Subreddit),
			goerr.V("cause", err.Error()))
	}

	fresh := make([]*reddit.Post, 0, len(posts))
	for _, p := range posts {
		if p.CreatedAt.After(cursor) {
			fresh = append(fresh, p)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
	})

	sent := 0
	for _, p := range fresh {
		if err := uc.discord.SendMessage(ctx, guild.Relay.ChannelID, relayAlertContent, relayEmbed(p)); err != nil {
			// Keep the cursor at the last delivered post so the rest is retried
			if sent > 0 {
				if putErr := uc.repo.RelayCursor().Put(ctx, guildID, cursor); putErr != nil {
					logging.From(ctx).Error("failed to save relay cursor", "error", putErr.Error())
				}
			}
			return sent, goerr.Wrap(err, "failed to relay post",
				goerr.V(GuildIDKey, guildID),
				goerr.V(PostLinkKey, p.Link()))
		}
		cursor = p.CreatedAt
		sent++
	}

	if sent > 0 {
		if err := uc.repo.RelayCursor().Put(ctx, guildID, cursor); err != nil {
			return sent, goerr.Wrap(err, "failed to save relay cursor", goerr.V(GuildIDKey, guildID))
		}
	}
	return sent, nil
}

func relayEmbed(p *reddit.Post) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       Truncate(p.Title, 256),
		URL:         p.Link(),
		Description: Truncate(p.Body, 2048),
		Color:       ColorRelay,
		Author:      &discordgo.MessageEmbedAuthor{Name: "u/" + p.Author},
		Footer:      &discordgo.MessageEmbedFooter{Text: "r/" + p.Subreddit},
	}
	if !p.CreatedAt.IsZero() {
		embed.Timestamp = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return embed
}
