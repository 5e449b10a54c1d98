package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/features"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/urfave/cli/v3"
)

// batchJobs are the jobs the batch command can run against a started host.
var batchJobs = map[string]func(h *host.Host, cmd *cli.Command) host.BatchJob{
	"report": func(h *host.Host, cmd *cli.Command) host.BatchJob {
		return features.ComponentReport(h, output(cmd))
	},
}

func batchJobNames() []string {
	names := make([]string, 0, len(batchJobs))
	for name := range batchJobs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var batchCmd = &cli.Command{
	Name:  "batch",
	Usage: "Start a microservice host in batch mode, run one job, and stop",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:    "job",
			Aliases: []string{"j"},
			Usage:   fmt.Sprintf("Job to run (%v)", batchJobNames()),
			Value:   "report",
		},
		&cli.DurationFlag{
			Name:  "stop-timeout",
			Usage: "Override the configured stop timeout (0 waits for the stop to finish)",
		},
	},
	Action: batchAction,
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	newJob, ok := batchJobs[cmd.String("job")]
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown job %q, expected one of %v", cmd.String("job"), batchJobNames()), 1)
	}

	session, err := newHostSession(cmd, cmd.String("config"), func(cfg *config.BootConfig) {
		cfg.Mode.Batch = true
		cfg.Mode.Clustered = false
	})
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = session.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopTimeout := session.host.Config().Timeouts.Stop.AsDuration()
	if cmd.IsSet("stop-timeout") {
		stopTimeout = cmd.Duration("stop-timeout")
	}

	succeeded, err := session.host.RunBatchJob(ctx, newJob(session.host, cmd), stopTimeout)
	if err != nil {
		return cli.Exit(fmt.Errorf("batch job %s: %w", cmd.String("job"), err), 1)
	}
	if !succeeded {
		return cli.Exit(fmt.Sprintf("batch job %s did not succeed", cmd.String("job")), 1)
	}

	session.logger.Info("Batch job complete", "job", cmd.String("job"))
	return nil
}
