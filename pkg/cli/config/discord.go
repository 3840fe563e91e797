package config

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/urfave/cli/v3"
)

type Discord struct {
	token string `masq:"secret"`
}

func (x *Discord) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "discord-token",
			Usage:       "Discord bot token",
			Category:    "Discord",
			Required:    true,
			Destination: &x.token,
			Sources:     cli.EnvVars("MODBRIDGE_DISCORD_TOKEN"),
		},
	}
}

func (x Discord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(x.token)),
	)
}

// Configure creates the gateway session. The session is not opened yet.
func (x *Discord) Configure() (*discordgo.Session, error) {
	session, err := discord.NewSession(x.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure discord")
	}
	return session, nil
}
