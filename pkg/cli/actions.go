package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/cli/config"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/rigcse/modbridge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdActions() *cli.Command {
	return &cli.Command{
		Name:  "actions",
		Usage: "Inspect and remove stored scheduled actions",
		Commands: []*cli.Command{
			cmdActionsList(),
			cmdActionsDelete(),
		},
	}
}

func openActionStore(ctx context.Context, repoCfg *config.Repository) (*usecase.UseCases, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	return usecase.New(repo), func() { safe.Close(ctx, repo) }, nil
}

func writerOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func cmdActionsList() *cli.Command {
	var repoCfg config.Repository
	var guildID string
	var actionType string
	var dueOnly bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "guild",
			Usage:       "Only list actions of this guild",
			Destination: &guildID,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Only list actions of this type (lock or unlock)",
			Destination: &actionType,
		},
		&cli.BoolFlag{
			Name:        "due",
			Usage:       "Only list actions that are already due",
			Destination: &dueOnly,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stored scheduled actions",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			filter := interfaces.ScheduledActionFilter{GuildID: guildID}
			if actionType != "" {
				t, err := types.ParseActionType(actionType)
				if err != nil {
					return goerr.Wrap(err, "invalid --type")
				}
				filter.Type = t
			}
			now := time.Now()
			if dueOnly {
				filter.DueBefore = now
			}

			uc, closer, err := openActionStore(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer closer()

			actions, err := uc.Action.List(ctx, filter)
			if err != nil {
				return err
			}

			printActions(writerOf(c), actions, now)
			return nil
		},
	}
}

func cmdActionsDelete() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete stored scheduled actions without executing them",
		ArgsUsage: "<action-id>...",
		Flags:     repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			ids := c.Args().Slice()
			if len(ids) == 0 {
				return goerr.New("at least one action ID is required")
			}

			uc, closer, err := openActionStore(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer closer()

			w := writerOf(c)
			for _, id := range ids {
				action, err := uc.Action.Cancel(ctx, model.ScheduledActionID(id))
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s %s %s %s\n",
					color.RedString("deleted"),
					action.ID,
					action.Type,
					action.PostLink)
			}
			return nil
		},
	}
}

func printActions(w io.Writer, actions []*model.ScheduledAction, now time.Time) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "No scheduled actions")
		return
	}

	lockColor := color.New(color.FgYellow, color.Bold)
	unlockColor := color.New(color.FgCyan, color.Bold)
	dueColor := color.New(color.FgRed)
	dim := color.New(color.Faint)

	for _, a := range actions {
		verb := unlockColor.Sprint(a.Type.Title())
		if a.Type == types.ActionTypeLock {
			verb = lockColor.Sprint(a.Type.Title())
		}

		due := a.DueAt.Local().Format(time.DateTime)
		if a.IsDue(now) {
			due = dueColor.Sprint(due + " (due)")
		}

		fmt.Fprintf(w, "%s  %-6s  %s  %s\n", dim.Sprint(a.ID), verb, due, a.PostLink)
		fmt.Fprintf(w, "    guild=%s by=%s channel=%s", a.GuildID, a.ScheduledBy, a.ChannelID)
		if a.AttemptCount > 0 {
			fmt.Fprintf(w, " %s", dueColor.Sprintf("attempts=%d last_error=%q", a.AttemptCount, a.LastError))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d action(s)\n", len(actions))
}
