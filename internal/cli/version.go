package cli

import (
	"context"
	"fmt"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/brandonbloom/dispatch/internal/version"
)

func registerVersion(r *dispatch.Registry) {
	r.Register("version", func(ctx context.Context, args dispatch.Args) (any, error) {
		return fmt.Sprintf("%s version %s", programName, version.String()), nil
	})
}
