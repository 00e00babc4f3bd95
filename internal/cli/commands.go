package cli

import (
	"context"
	"io"

	"github.com/brandonbloom/dispatch/dispatch"
)

func registerCommands(r *dispatch.Registry, stdout io.Writer) {
	r.Register("commands", func(ctx context.Context, args dispatch.Args) (any, error) {
		return nil, r.WriteInventory(stdout)
	})
}
