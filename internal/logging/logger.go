// Package logging builds the service's leveled, structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Options configures the logger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // logfmt, json
	Output io.Writer
}

// New creates a logger writing to Output (stderr by default). Every record
// carries a UTC timestamp and the caller.
func New(opts Options) log.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	output = log.NewSyncWriter(output)

	var logger log.Logger
	if strings.ToLower(opts.Format) == "json" {
		logger = log.NewJSONLogger(output)
	} else {
		logger = log.NewLogfmtLogger(output)
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(logger, levelOption(opts.Level))
}

// Component scopes logger to a named component.
func Component(logger log.Logger, name string) log.Logger {
	return log.With(logger, "component", name)
}

func levelOption(name string) level.Option {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
