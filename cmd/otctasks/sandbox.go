package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud/sqlite"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func newSandboxCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Manage the local sqlite sandbox",
	}
	cmd.AddCommand(newSandboxSeedCmd(root))
	return cmd
}

func newSandboxSeedCmd(root *rootFlags) *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load resources from a fixture file into the sandbox",
		Example: `  otctasks sandbox seed -f fixtures.yaml

A fixture maps resource kinds to records:

  router:
    - id: r-1
      name: main`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFileOption("fixture", fixturePath); err != nil {
				return err
			}
			return runSandboxSeed(cmd, root, fixturePath)
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "file", "f", "", "Path to fixture file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runSandboxSeed(cmd *cobra.Command, root *rootFlags, fixturePath string) error {
	app, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.sandbox == nil {
		return apperrors.NewValidationError("cloud", "sandbox commands require the sqlite cloud", nil)
	}

	fixture, err := sqlite.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	n, err := app.sandbox.SeedFixture(cmd.Context(), fixture)
	if err != nil {
		return newCommandError("seed the sandbox", app.sandbox.Path(), err, "Check that record ids in the fixture are unique.")
	}

	app.Logger.WithFields(map[string]any{"records": n, "fixture": fixturePath}).Info("sandbox seeded")
	return newRenderer(cmd, app.Settings.Output).object(map[string]any{
		"sandbox": app.sandbox.Path(),
		"seeded":  n,
	})
}
