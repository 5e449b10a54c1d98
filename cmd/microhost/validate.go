package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/features"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/urfave/cli/v3"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a boot configuration file",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "tree",
			Aliases: []string{"t"},
			Usage:   "Show detailed tree view of the validated configuration",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file",
		},
	},
	Suggest: true,
	Action:  validateAction,
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if configPath == "" {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf(
				"config file path required (use the --config flag, or provide the config file as positional argument)",
			)
		}
		configPath = cmd.Args().Get(0)
	}

	return validateLocal(output(cmd), configPath, cmd.Bool("tree"))
}

// renderConfigSummary creates a formatted summary string for the configuration
func renderConfigSummary(path string, cfg *config.BootConfig) string {
	var summary strings.Builder

	summary.WriteString("\nConfig Summary:\n")
	summary.WriteString(fmt.Sprintf("- Path: %s\n", path))
	summary.WriteString(fmt.Sprintf("- Microservice: %s\n", cfg.Name))
	summary.WriteString(fmt.Sprintf("- Instance: %s\n", cfg.InstanceID))
	summary.WriteString(fmt.Sprintf("- Features: %d\n", len(cfg.Features)))
	summary.WriteString("\nUse --tree for a more detailed view of the config.")

	return summary.String()
}

// validateLocal loads the config and checks every configured feature can be
// built by the built-in registry.
func validateLocal(w io.Writer, configPath string, treeView bool) error {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry := host.NewRegistry()
	if err := features.Register(registry, nil); err != nil {
		return fmt.Errorf("failed to register features: %w", err)
	}
	if _, err := registry.LoadFeatures(context.Background(), cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "Configuration file %s is valid\n", configPath)

	if treeView {
		fmt.Fprintln(w, cfg)
		return nil
	}

	fmt.Fprintln(w, renderConfigSummary(configPath, cfg))
	return nil
}
