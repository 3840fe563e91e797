package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/cli/config"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/repository/firestore"
	"github.com/rigcse/modbridge/pkg/utils/logging"
	"github.com/rigcse/modbridge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var guildsCfg config.Guilds
	var firestoreProjectID string
	var firestoreDatabaseID string
	var firestorePrefix string

	var flags []cli.Flag
	flags = append(flags, guildsCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (if specified, stored actions are checked against the configuration)",
			Sources:     cli.EnvVars("MODBRIDGE_FIRESTORE_PROJECT_ID"),
			Destination: &firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("MODBRIDGE_FIRESTORE_DATABASE_ID"),
			Destination: &firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Sources:     cli.EnvVars("MODBRIDGE_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &firestorePrefix,
		},
	)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the guild configuration and optionally check stored actions",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate configuration file
			appCfg, registry, err := guildsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed", "guild_count", len(appCfg.Guilds))
			for _, g := range registry.List() {
				logger.Info("Guild validated",
					"id", g.ID,
					"name", g.Name,
					"subreddit", g.Subreddit,
					"moderator_roles", len(g.ModeratorRoleIDs),
					"relay", g.Relay.Enabled(),
				)
			}

			// Step 2: If Firestore project ID is specified, check stored actions
			if firestoreProjectID == "" {
				logger.Info("No Firestore project ID specified, skipping store check")
				return nil
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID,
				firestore.WithCollectionPrefix(firestorePrefix))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer safe.Close(ctx, repo)

			actions, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{})
			if err != nil {
				return goerr.Wrap(err, "failed to list stored actions")
			}

			orphans := 0
			for _, a := range actions {
				if _, err := registry.Get(a.GuildID); err != nil {
					orphans++
					logger.Warn("Stored action belongs to an unconfigured guild",
						"id", a.ID,
						"guild_id", a.GuildID,
						"action", a.Type,
						"post_link", a.PostLink,
					)
				}
			}

			logger.Info("Store check completed",
				"stored_actions", len(actions),
				"unconfigured_guild_actions", orphans,
			)
			return nil
		},
	}
}
