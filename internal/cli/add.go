package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/brandonbloom/dispatch/dispatch"
)

func registerAdd(r *dispatch.Registry) {
	r.Decorate(
		dispatch.NewOption(dispatch.Config{"type": dispatch.Int, "nargs": "+", "help": "integers to sum"}, "nums"),
	)(add)
}

func add(ctx context.Context, args dispatch.Args) (any, error) {
	nums := args.Ints("nums")
	sum := 0
	for _, n := range nums {
		sum += n
	}
	if !args.Bool("verbose") {
		return sum, nil
	}
	terms := make([]string, len(nums))
	for i, n := range nums {
		terms[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s = %d", strings.Join(terms, " + "), sum), nil
}
