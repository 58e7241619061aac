package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/cloud/memory"
	"github.com/alexisbeaulieu97/otctasks/internal/cloud/sqlite"
	"github.com/alexisbeaulieu97/otctasks/internal/logger"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/settings"
)

// AppContext bundles the services a command needs for one invocation.
type AppContext struct {
	Settings *settings.Settings
	Logger   *logger.Logger
	Registry *plugin.PluginRegistry
	Client   cloud.Client
	sandbox  *sqlite.Client
}

// newAppContext resolves settings and opens the configured collaborator.
// Callers must Close the returned context.
func newAppContext(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	s, err := settings.Load(settings.Options{ConfigFile: flags.settingsFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	level := s.LogLevel
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: isTerminal(cmd.ErrOrStderr()),
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	app := &AppContext{Settings: s, Logger: log, Registry: plugin.DefaultRegistry()}
	switch s.Cloud {
	case settings.CloudSQLite:
		client, err := sqlite.Open(s.SandboxPath, sqlite.WithAsyncKinds(sqlite.DefaultAsyncKinds...))
		if err != nil {
			return nil, newCommandError("open the sandbox", s.SandboxPath, err, "Check that the sandbox path is writable or set --sandbox-path.")
		}
		app.sandbox = client
		app.Client = client
	default:
		app.Client = memory.New(memory.WithAsyncKinds(sqlite.DefaultAsyncKinds...))
	}

	log.WithFields(map[string]any{"cloud": s.Cloud, "settings": s.ConfigFile}).Debug("settings loaded")
	return app, nil
}

// Close releases the collaborator.
func (a *AppContext) Close() error {
	if a == nil || a.sandbox == nil {
		return nil
	}
	return a.sandbox.Close()
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
