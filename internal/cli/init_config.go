package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/brandonbloom/dispatch/internal/config"
)

func registerInitConfig(r *dispatch.Registry) {
	r.Register("init-config", runInitConfig,
		dispatch.NewOption(dispatch.Config{
			"nargs":   "?",
			"default": config.Path(),
			"help":    "where to write the config",
		}, "path"),
		dispatch.NewOption(dispatch.Config{
			"choices": []string{"toml", "yaml"},
			"help":    "file format (default from the path's extension)",
		}, "--format"),
		dispatch.NewOption(dispatch.Config{
			"action": dispatch.StoreTrue,
			"help":   "overwrite an existing file",
		}, "--force", "-f"),
	)
}

func runInitConfig(ctx context.Context, args dispatch.Args) (any, error) {
	path := args.String("path")
	if !args.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%s already exists; pass --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := config.Save(path, args.String("format"), config.Default()); err != nil {
		return nil, err
	}
	return fmt.Sprintf("wrote %s", path), nil
}
