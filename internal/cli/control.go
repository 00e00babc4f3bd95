package cli

import (
	"context"
	"errors"
	"time"

	"github.com/brandonbloom/dispatch/dispatch"
)

func registerWait(r *dispatch.Registry) {
	r.Register("wait", runWait,
		dispatch.NewOption(dispatch.Config{
			"type":     dispatch.Duration,
			"required": true,
			"help":     "how long to wait, e.g. 1.5s",
		}, "--for"),
	)
}

func runWait(ctx context.Context, args dispatch.Args) (any, error) {
	timer := time.NewTimer(args.Duration("for"))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

func registerFail(r *dispatch.Registry) {
	r.Register("fail", runFail,
		dispatch.NewOption(dispatch.Config{
			"default": "something went wrong",
			"help":    "error message to fail with",
		}, "--message", "-m"),
	)
}

func runFail(ctx context.Context, args dispatch.Args) (any, error) {
	return nil, errors.New(args.String("message"))
}

func registerExit(r *dispatch.Registry) {
	r.Register("exit", runExit,
		dispatch.NewOption(dispatch.Config{
			"type":     dispatch.Int,
			"required": true,
			"help":     "status to exit with",
		}, "--code"),
	)
}

func runExit(ctx context.Context, args dispatch.Args) (any, error) {
	return nil, dispatch.Exit(args.Int("code"))
}
