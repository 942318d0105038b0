// Package telemetry builds the zerolog loggers used by the ECS binaries.
package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Options overrides the environment configuration. Zero values keep the configured value.
type Options struct {
	Component string    // Value of the "component" field on every log line
	LogLevel  string    // zerolog level name
	LogFormat LogFormat // Output format
	Out       io.Writer // Destination, defaults to stdout
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *Options) apply(newOpt Options) {
	if newOpt.Component != "" {
		opt.Component = newOpt.Component
	}
	if newOpt.LogLevel != "" {
		opt.LogLevel = newOpt.LogLevel
	}
	if newOpt.LogFormat != LogFormatUndefined {
		opt.LogFormat = newOpt.LogFormat
	}
	if newOpt.Out != nil {
		opt.Out = newOpt.Out
	}
}

// validate checks that all required options are set and valid.
func (opt *Options) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(opt.LogLevel)); err != nil {
		return eris.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", opt.LogLevel)
	}
	if opt.LogFormat == LogFormatUndefined {
		return eris.New("log format must be specified")
	}
	return nil
}

// NewLogger returns a logger configured from ECS_LOG_LEVEL and ECS_LOG_FORMAT, overridden by opts.
func NewLogger(opts Options) (zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return zerolog.Nop(), eris.Wrap(err, "failed to load logger config")
	}

	options := Options{Out: os.Stdout}
	cfg.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return zerolog.Nop(), eris.Wrap(err, "invalid logger options")
	}

	return newLogger(options), nil
}

func newLogger(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	writer := opts.Out
	if opts.LogFormat == LogFormatPretty {
		writer = zerolog.ConsoleWriter{
			Out:        opts.Out,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(writer).Level(level).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return ctx.Logger()
}
