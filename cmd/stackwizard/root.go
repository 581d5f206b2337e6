package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stackwizard",
		Short: "Build container deployment manifests step by step",
		Long: `stackwizard walks through picking a template, configuring it, placing
services, defining networks and volumes, and finally produces a
compose-style manifest and a deployment plan.

It runs as an HTTP service (serve), as an interactive terminal wizard
(wizard), or non-interactively from an action script (generate).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (YAML)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (json, text)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newWizardCmd())

	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
	return root
}

// loadRuntime loads the configuration for cmd and builds a logger writing to
// the command's stderr.
func loadRuntime(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")

	cfg, err := LoadConfig(path, flags)
	if err != nil {
		return nil, nil, &ServerError{Op: "LoadConfig", Err: err, ExitCode: ExitConfigError}
	}
	return cfg, SetupLogger(cfg, cmd.ErrOrStderr()), nil
}
