package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	settingsFile string
	cloud        string
	sandboxPath  string
	logLevel     string
	output       string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "otctasks",
		Short:         "otctasks reconciles cloud resources from declarative tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.settingsFile, "settings", "", "Settings file (default $HOME/.otctasks/config.yaml)")
	pf.StringVar(&flags.cloud, "cloud", "sqlite", "Collaborator backing the run: memory or sqlite")
	pf.StringVar(&flags.sandboxPath, "sandbox-path", "", "Database file of the sqlite collaborator")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error or disabled")
	pf.StringVarP(&flags.output, "output", "o", "json", "Output format: json, yaml or table")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newModulesCmd(flags))
	cmd.AddCommand(newSandboxCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
