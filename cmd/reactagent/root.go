package main

import (
	"log/slog"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool

	// set when --log-level or --no-color were given explicitly
	levelSet bool
	colorSet bool
}

func newRootCmd(deps Dependencies) *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "reactagent",
		Short:         "Autonomous ReAct coding agent",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			g.levelSet = cmd.Flags().Changed("log-level")
			g.colorSet = cmd.Flags().Changed("no-color")
			level, err := parseLevel(g.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(deps.Stderr, level, g.noColor))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.config/reactagent/config.json)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable coloured log output")

	root.AddCommand(runCmd(deps, &g), toolsCmd(deps, &g), parseCmd(deps))
	root.SetIn(deps.Stdin)
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	return root
}

// applyLogging switches to the config file's logging settings for any
// option not given on the command line.
func applyLogging(deps Dependencies, g *globalFlags, cfg config.LoggingConfig) error {
	if g.levelSet && g.colorSet {
		return nil
	}
	name, noColor := g.logLevel, g.noColor
	if !g.levelSet && cfg.Level != "" {
		name = cfg.Level
	}
	if !g.colorSet {
		noColor = cfg.NoColor
	}
	level, err := parseLevel(name)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(deps.Stderr, level, noColor))
	return nil
}
