package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/brandonbloom/dispatch/internal/config"
)

const programName = "dispatchdemo"

// Execute runs the demo against args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return 1
	}

	var opts []dispatch.RunOption
	if level, ok := cfg.Level(); ok {
		opts = append(opts, dispatch.WithLogLevel(level))
	} else {
		opts = append(opts, dispatch.WithoutLogging())
	}
	if !cfg.Timestamps() {
		opts = append(opts, dispatch.WithoutTimestamps())
	}
	return newRegistry(cfg, stdout, stderr).Run(ctx, args, opts...)
}

func newRegistry(cfg config.Config, stdout, stderr io.Writer) *dispatch.Registry {
	r := dispatch.New(programName)
	r.Stdout = stdout
	r.Stderr = stderr
	r.RootOptions = []dispatch.Option{
		dispatch.NewOption(dispatch.Config{
			"action": dispatch.StoreTrue,
			"help":   "explain results in more detail",
		}, "--verbose", "-v"),
		dispatch.NewOption(dispatch.Config{
			"choices": []string{config.ColorAuto, config.ColorAlways, config.ColorNever},
			"metavar": "WHEN",
			"help":    "colorize output: auto, always, or never (default from config)",
		}, "--color"),
	}
	r.Bootstrap = bootstrap(cfg, stdout)

	registerGreet(r)
	registerAdd(r)
	registerWait(r)
	registerFail(r)
	registerExit(r)
	registerInitConfig(r)
	registerCommands(r, stdout)
	registerVersion(r)
	return r
}
