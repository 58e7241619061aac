package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const redacted = "********"

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
	// Secrets lists field names whose values are never written.
	Secrets []string
}

// Logger wraps zerolog to provide a simplified API for the application.
type Logger struct {
	base    zerolog.Logger
	secrets map[string]struct{}
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var output io.Writer = writer
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}

	secrets := make(map[string]struct{}, len(opts.Secrets))
	for _, name := range opts.Secrets {
		secrets[strings.ToLower(name)] = struct{}{}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{base: logger, secrets: secrets}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop(), secrets: map[string]struct{}{}}
}

// WithFields returns a derived logger that always writes the supplied fields.
// Values of secret fields are replaced before they reach the writer.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}

	builder := l.base.With()
	for key, value := range fields {
		if l.isSecret(key) {
			value = redacted
		}
		builder = builder.Interface(key, value)
	}

	derived := Logger{base: builder.Logger(), secrets: l.secrets}
	return &derived
}

// WithSecrets returns a derived logger that also redacts the named fields.
func (l *Logger) WithSecrets(names ...string) *Logger {
	if l == nil {
		return nil
	}

	secrets := make(map[string]struct{}, len(l.secrets)+len(names))
	for name := range l.secrets {
		secrets[name] = struct{}{}
	}
	for _, name := range names {
		secrets[strings.ToLower(name)] = struct{}{}
	}
	return &Logger{base: l.base, secrets: secrets}
}

// WithTask scopes the logger to a single task invocation.
func (l *Logger) WithTask(taskID, module string) *Logger {
	return l.WithFields(map[string]any{"task": taskID, "module": module})
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.base.Info().Msg(msg)
}

// Debug writes a debug-level log entry if enabled.
func (l *Logger) Debug(msg string) {
	if l == nil {
		return
	}
	l.base.Debug().Msg(msg)
}

// Debugf writes a formatted debug-level log entry if enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.base.Debug().Msgf(format, args...)
}

// Warn writes a warning level log entry.
func (l *Logger) Warn(msg string) {
	if l == nil {
		return
	}
	l.base.Warn().Msg(msg)
}

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}

func (l *Logger) isSecret(key string) bool {
	_, ok := l.secrets[strings.ToLower(key)]
	return ok
}
