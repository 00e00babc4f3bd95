package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// LoggerName identifies the dispatcher in log entries.
const LoggerName = "dispatch"

type runSettings struct {
	level        logrus.Level
	logging      bool
	noTimestamps bool
}

// RunOption adjusts how Run reports failures.
type RunOption func(*runSettings)

// WithLogLevel sets the level of the logger Run builds for failures.
func WithLogLevel(level logrus.Level) RunOption {
	return func(s *runSettings) {
		s.level = level
		s.logging = true
	}
}

// WithoutTimestamps drops timestamps from the logger Run builds, which keeps
// its output stable when compared against recorded transcripts.
func WithoutTimestamps() RunOption {
	return func(s *runSettings) {
		s.noTimestamps = true
	}
}

// WithoutLogging stops Run from logging failures.
func WithoutLogging() RunOption {
	return func(s *runSettings) {
		s.logging = false
	}
}

// Run executes args and returns the process exit code. A non-nil handler
// value is printed to Stdout. Failures are logged at error level unless
// WithoutLogging is given; the stack trace follows at debug level.
func (r *Registry) Run(ctx context.Context, args []string, opts ...RunOption) int {
	settings := runSettings{level: logrus.InfoLevel, logging: true}
	for _, opt := range opts {
		opt(&settings)
	}

	res := r.Execute(ctx, args)
	switch res.Outcome {
	case Succeeded:
		if res.Value != nil {
			fmt.Fprintln(r.stdout(), res.Value)
		}
	case Failed:
		if settings.logging {
			r.logFailure(settings, res)
		}
	}
	return res.ExitCode()
}

// Main runs the process arguments and exits with the resulting code.
func (r *Registry) Main(opts ...RunOption) {
	os.Exit(r.Run(context.Background(), os.Args[1:], opts...))
}

func (r *Registry) logFailure(settings runSettings, res Result) {
	logger := r.Logger
	if logger == nil {
		logger = newLogger(r.stderr(), settings)
	}
	entry := logger.WithField("logger", LoggerName)
	if res.Command != "" {
		entry = entry.WithField("command", res.Command)
	}
	entry.Error(res.Err.Error())
	entry.Debugf("%+v", res.Err)
}

func newLogger(out io.Writer, settings runSettings) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(settings.level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableTimestamp: settings.noTimestamps,
		DisableColors:    !writerIsTerminal(out),
	})
	return logger
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
