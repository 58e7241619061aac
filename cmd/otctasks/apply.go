package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/otctasks/internal/engine"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

type applyOptions struct {
	playbookPath string
	check        bool
	progress     bool
}

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a playbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFileOption("playbook", opts.playbookPath); err != nil {
				return err
			}
			return runApply(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.playbookPath, "config", "c", "", "Path to playbook file")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Report what would change without changing anything")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show task progress on stderr")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runApply(cmd *cobra.Command, root *rootFlags, opts *applyOptions) error {
	app, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	applyOpts := engine.ApplyOptions{CheckMode: opts.check, Logger: app.Logger}
	var view *progressView
	if opts.progress {
		view = startProgress(cmd.ErrOrStderr(), isTerminal(cmd.ErrOrStderr()), cancel)
		applyOpts.Observer = view
	}

	result, err := engine.ApplyPlaybook(ctx, opts.playbookPath, app.Registry, app.Client, applyOpts)
	if view != nil {
		var summary model.Summary
		var runErr error
		if result != nil {
			summary, runErr = result.Summary, result.Error
		} else {
			runErr = err
		}
		if viewErr := view.finish(summary, runErr); viewErr != nil {
			app.Logger.Error(viewErr, "progress view failed")
		}
	}
	if err != nil {
		return err
	}

	r := newRenderer(cmd, app.Settings.Output)
	r.quiet = opts.progress
	if err := r.playbook(result); err != nil {
		return err
	}

	if len(result.FailedTasks) > 0 {
		return fmt.Errorf("playbook %s: %d of %d tasks failed", result.Playbook, len(result.FailedTasks), result.Summary.Total)
	}
	return result.Error
}
