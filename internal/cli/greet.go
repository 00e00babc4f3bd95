package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/fatih/color"
)

func registerGreet(r *dispatch.Registry) {
	r.Decorate(
		dispatch.NewOption(dispatch.Config{"help": "who to greet"}, "name"),
		dispatch.NewOption(dispatch.Config{"metavar": "TEXT", "help": "greeting to use instead of the configured one"}, "--greeting", "-g"),
		dispatch.NewOption(dispatch.Config{"action": dispatch.StoreTrue, "help": "greet loudly"}, "--shout"),
	)(greet)
}

func greet(ctx context.Context, args dispatch.Args) (any, error) {
	msg := fmt.Sprintf("%s, %s%s", args.String("greeting"), args.String("name"), args.String("punctuation"))
	if args.Bool("shout") {
		msg = strings.ToUpper(msg)
	}
	style := color.New(color.FgGreen, color.Bold)
	if args.Bool("color") {
		style.EnableColor()
	} else {
		style.DisableColor()
	}
	return style.Sprint(msg), nil
}
