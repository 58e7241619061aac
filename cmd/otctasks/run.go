package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/engine"
)

type runOptions struct {
	module     string
	params     []string
	paramsFile string
	check      bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <module>",
		Short: "Run a single module",
		Long: `Run a single module with parameters given as key=value pairs or a
params file. Values are read as YAML scalars, so ttl=300 is a number.`,
		Example: `  otctasks run dns_zones -p name=example.com. -p ttl=300
  otctasks run nat_snat_info -p nat_gateway_id=gw-1 -o table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.module = args[0]
			return runModule(cmd, root, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Module parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.paramsFile, "params-file", "", "YAML file with module parameters")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Report what would change without changing anything")

	return cmd
}

func runModule(cmd *cobra.Command, root *rootFlags, opts *runOptions) error {
	params, err := collectParams(opts.paramsFile, opts.params)
	if err != nil {
		return err
	}

	app, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	execCtx := &engine.ExecutionContext{
		Client:    app.Client,
		Registry:  app.Registry,
		CheckMode: opts.check,
		Logger:    app.Logger,
		Context:   cmd.Context(),
	}
	task := &config.Task{ID: "run", Module: opts.module, Enabled: true, Params: params}

	result, runErr := engine.RunTask(execCtx, task)
	if result != nil {
		if err := newRenderer(cmd, app.Settings.Output).taskResult(result); err != nil {
			return err
		}
	}
	return runErr
}
