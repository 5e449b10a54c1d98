package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/microhost/internal/features"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/urfave/cli/v3"
)

var featuresCmd = &cli.Command{
	Name:  "features",
	Usage: "List the features a boot configuration can enable",
	Action: func(_ context.Context, cmd *cli.Command) error {
		registry := host.NewRegistry()
		if err := features.Register(registry, nil); err != nil {
			return err
		}
		for _, name := range registry.Names() {
			fmt.Fprintln(output(cmd), name)
		}
		return nil
	},
}
