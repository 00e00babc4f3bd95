package cli

import (
	"context"
	"io"
	"os"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/brandonbloom/dispatch/internal/config"
	"golang.org/x/term"
)

// bootstrap resolves the --color flag against the config into a plain
// "color" bool and fills greet's defaults from the config.
func bootstrap(cfg config.Config, stdout io.Writer) dispatch.Bootstrap {
	return func(ctx context.Context, args dispatch.Args) (dispatch.Args, error) {
		mode := cfg.Color
		if m := args.String("color"); m != "" {
			mode = m
		}
		next := args.Without("color")
		next["color"] = colorEnabled(mode, stdout)

		if next.Has("greeting") {
			if next["greeting"] == nil {
				next["greeting"] = cfg.Greet.Greeting
			}
			next["punctuation"] = cfg.Greet.Punctuation
		}
		return next, nil
	}
}

func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return writerIsTerminal(w)
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
