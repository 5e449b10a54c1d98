package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/microhost/internal/server"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run a microservice host as a daemon until interrupted",
	Flags: []cli.Flag{
		configFlag,
		&cli.DurationFlag{
			Name:  "stop-timeout",
			Usage: "Override the configured stop timeout (0 waits for the stop to finish)",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	session, err := newHostSession(cmd, cmd.String("config"), nil)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = session.Close() }()

	runnerOpts := []server.Option{server.WithLogHandler(session.handler)}
	if cmd.IsSet("stop-timeout") {
		runnerOpts = append(runnerOpts, server.WithStopTimeout(cmd.Duration("stop-timeout")))
	}
	runner, err := server.NewRunner(session.host, runnerOpts...)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create runner: %w", err), 1)
	}

	super, err := supervisor.New(
		supervisor.WithRunnables(runner),
		supervisor.WithLogHandler(session.handler),
		supervisor.WithContext(ctx),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create supervisor: %w", err), 1)
	}
	if err := super.Run(); err != nil {
		return cli.Exit(fmt.Errorf("failed to run microservice: %w", err), 1)
	}

	session.logger.Info("Microservice shutdown complete")
	return nil
}
