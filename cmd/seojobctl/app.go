package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobcontainer"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobinfra"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	kindFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "kind", Usage: "target kind: collection, item or profile", Required: true}
	}
	idFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "id", Usage: "target record id", Required: true}
	}
	dayFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "day", Usage: "report day (YYYY-MM-DD, UTC)", Value: time.Now().UTC().Format(time.DateOnly)}
	}

	return &cli.Command{
		Name:  "seojobctl",
		Usage: "Operate the SEO metadata job queue",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "path to an env file", Value: ".env"},
			&cli.BoolFlag{Name: "verbose", Usage: "log at debug level"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				logx.SetLevel(logx.LevelDebug)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: migrateAction,
			},
			{
				Name:  "enqueue",
				Usage: "Create pending jobs",
				Commands: []*cli.Command{
					{
						Name:   "approved",
						Usage:  "Enqueue every approved record of a kind",
						Flags:  []cli.Flag{kindFlag()},
						Action: withQueue(enqueueApprovedAction),
					},
					{
						Name:   "missing",
						Usage:  "Enqueue approved records that have never had a job",
						Flags:  []cli.Flag{kindFlag()},
						Action: withQueue(enqueueMissingAction),
					},
					{
						Name:  "one",
						Usage: "Enqueue a single record",
						Flags: []cli.Flag{
							kindFlag(), idFlag(),
							&cli.StringFlag{Name: "context", Usage: "additional guidance for the generator"},
						},
						Action: withQueue(enqueueOneAction),
					},
				},
			},
			{
				Name:  "regenerate",
				Usage: "Force a fresh job for a record",
				Flags: []cli.Flag{
					kindFlag(), idFlag(),
					&cli.StringFlag{Name: "context", Usage: "additional guidance for the generator"},
				},
				Action: withQueue(regenerateAction),
			},
			{
				Name:  "process",
				Usage: "Claim and run one batch of pending jobs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "batch-size", Usage: "jobs to claim (0 uses the configured size)"},
				},
				Action: withQueue(processAction),
			},
			{
				Name:   "tick",
				Usage:  "Run one scheduler round: auto-enqueue, stale sweep, batch and archive",
				Action: withQueue(tickAction),
			},
			{
				Name:  "requeue",
				Usage: "Return jobs to pending",
				Commands: []*cli.Command{
					{
						Name:   "failed",
						Usage:  "Requeue every failed job",
						Action: withQueue(requeueFailedAction),
					},
					{
						Name:  "stale",
						Usage: "Requeue jobs stuck in processing",
						Flags: []cli.Flag{
							&cli.DurationFlag{Name: "older-than", Usage: "staleness threshold (0 uses the configured value)"},
						},
						Action: withQueue(requeueStaleAction),
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show per-kind queue and coverage statistics",
				Action: withQueue(statsAction),
			},
			{
				Name:  "jobs",
				Usage: "Inspect jobs",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List jobs, newest first",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "kind", Usage: "filter by target kind"},
							&cli.StringFlag{Name: "status", Usage: "filter by status"},
							&cli.IntFlag{Name: "page", Value: 1},
							&cli.IntFlag{Name: "page-size", Value: kernel.DefaultPageSize},
						},
						Action: withQueue(jobsListAction),
					},
					{
						Name:   "get",
						Usage:  "Show one job",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Usage: "job id", Required: true}},
						Action: withQueue(jobsGetAction),
					},
				},
			},
			{
				Name:  "reports",
				Usage: "Inspect archived batch reports",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List report ids for a day",
						Flags:  []cli.Flag{dayFlag()},
						Action: withQueue(reportsListAction),
					},
					{
						Name:  "show",
						Usage: "Show one report",
						Flags: []cli.Flag{
							dayFlag(),
							&cli.StringFlag{Name: "id", Usage: "report id", Required: true},
						},
						Action: withQueue(reportsShowAction),
					},
				},
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Wiring
// ---------------------------------------------------------------------------

type queueAction func(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error

// withQueue opens infrastructure for the duration of one command.
func withQueue(fn queueAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load(cmd.String("env"))
		if err != nil {
			return err
		}
		infra, err := seojobcontainer.OpenInfra(ctx, cfg)
		if err != nil {
			return err
		}
		defer infra.Close()

		q, err := seojobcontainer.New(ctx, seojobcontainer.Deps{
			Cfg:     cfg,
			DB:      infra.DB,
			Redis:   infra.Redis,
			Archive: infra.Archive,
		})
		if err != nil {
			return err
		}
		return fn(ctx, cmd, q)
	}
}

func migrateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return err
	}
	if cfg.SEOJob.Store == "memory" {
		return errx.New("migrations need the postgres store", errx.TypeValidation)
	}
	infra, err := seojobcontainer.OpenInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	if err := seojobinfra.Migrate(ctx, infra.DB); err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"status": "migrated"})
}

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func kindArg(cmd *cli.Command) (seojob.TargetKind, error) {
	return seojob.ParseTargetKind(cmd.String("kind"))
}

func parseDay(raw string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errx.New("day must be YYYY-MM-DD", errx.TypeValidation).WithDetail("day", raw)
	}
	return day, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errx.New("id must be a UUID", errx.TypeValidation).WithDetail("id", raw)
	}
	return id, nil
}
