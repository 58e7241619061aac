// Package settings resolves the runtime settings of the CLI from flags,
// OTCTASKS_ environment variables and an optional config file, in that
// order of precedence.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

const (
	// ConfigFolder is the settings folder under $HOME.
	ConfigFolder = ".otctasks"
	// ConfigName is the settings file name under ConfigFolder, without extension.
	ConfigName = "config"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "OTCTASKS"

	CloudMemory = "memory"
	CloudSQLite = "sqlite"

	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Keys lists every recognised setting.
var Keys = []string{"cloud", "sandbox_path", "log_level", "output"}

// Settings are the resolved runtime settings.
type Settings struct {
	// Cloud selects the collaborator implementation.
	Cloud string `mapstructure:"cloud" validate:"oneof=memory sqlite"`
	// SandboxPath is the database file of the sqlite collaborator.
	SandboxPath string `mapstructure:"sandbox_path" validate:"required_if=Cloud sqlite"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Output      string `mapstructure:"output" validate:"oneof=json yaml table"`
	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Options locates the sources Load reads.
type Options struct {
	// ConfigFile is an explicit settings file. It must exist.
	ConfigFile string
	// ConfigPaths are searched for ConfigName when ConfigFile is empty.
	// Nil means $HOME/.otctasks.
	ConfigPaths []string
	// Flags are bound by setting key; dashes in flag names map to
	// underscores. Only flags the user changed override other sources.
	Flags *pflag.FlagSet
}

// Load resolves the settings.
func Load(opts Options) (*Settings, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("cloud", CloudSQLite)
	v.SetDefault("sandbox_path", filepath.Join(home, ConfigFolder, "sandbox.db"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("output", OutputJSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, err
	}

	if err := readConfig(v, opts); err != nil {
		return nil, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, apperrors.NewParseError(v.ConfigFileUsed(), 0, err)
	}
	s.Cloud = strings.ToLower(s.Cloud)
	s.Output = strings.ToLower(s.Output)
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.ConfigFile = v.ConfigFileUsed()

	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for _, key := range Keys {
		flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

func readConfig(v *viper.Viper, opts Options) error {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return apperrors.NewParseError(opts.ConfigFile, 0, err)
		}
		v.SetConfigFile(opts.ConfigFile)
	} else {
		paths := opts.ConfigPaths
		if paths == nil {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil
			}
			paths = []string{filepath.Join(home, ConfigFolder)}
		}
		v.SetConfigName(ConfigName)
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return apperrors.NewParseError(v.ConfigFileUsed(), 0, err)
	}
	return nil
}

func validate(s *Settings) error {
	err := validator.New().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := key(fe.StructField())
		return apperrors.NewValidationError(field, fmt.Sprintf("invalid value %q (%s %s)", fe.Value(), fe.Tag(), fe.Param()), err)
	}
	return apperrors.NewValidationError("settings", err.Error(), err)
}

func key(structField string) string {
	switch structField {
	case "SandboxPath":
		return "sandbox_path"
	case "LogLevel":
		return "log_level"
	default:
		return strings.ToLower(structField)
	}
}
