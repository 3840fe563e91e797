package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/service/reddit"
	"github.com/urfave/cli/v3"
)

type Reddit struct {
	clientID     string
	clientSecret string `masq:"secret"`
	username     string
	password     string `masq:"secret"`
	userAgent    string
}

func (x *Reddit) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "reddit-client-id",
			Usage:       "Reddit script application client ID",
			Category:    "Reddit",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("MODBRIDGE_REDDIT_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "reddit-client-secret",
			Usage:       "Reddit script application client secret",
			Category:    "Reddit",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("MODBRIDGE_REDDIT_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "reddit-username",
			Usage:       "Reddit moderator account username",
			Category:    "Reddit",
			Destination: &x.username,
			Sources:     cli.EnvVars("MODBRIDGE_REDDIT_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "reddit-password",
			Usage:       "Reddit moderator account password",
			Category:    "Reddit",
			Destination: &x.password,
			Sources:     cli.EnvVars("MODBRIDGE_REDDIT_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "reddit-user-agent",
			Usage:       "User agent sent to Reddit",
			Category:    "Reddit",
			Value:       reddit.DefaultUserAgent,
			Destination: &x.userAgent,
			Sources:     cli.EnvVars("MODBRIDGE_REDDIT_USER_AGENT"),
		},
	}
}

func (x Reddit) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client-id", x.clientID),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("username", x.username),
		slog.Int("password.len", len(x.password)),
		slog.String("user-agent", x.userAgent),
	)
}

// Configure creates the Reddit client
func (x *Reddit) Configure() (reddit.Service, error) {
	svc, err := reddit.New(reddit.Credentials{
		ClientID:     x.clientID,
		ClientSecret: x.clientSecret,
		Username:     x.username,
		Password:     x.password,
	}, reddit.WithUserAgent(x.userAgent))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure reddit")
	}
	return svc, nil
}
