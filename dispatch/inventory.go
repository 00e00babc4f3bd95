package dispatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteInventory writes one line per registered command with the synopsis
// of its options, names padded to a common display width. Root options,
// if any, are listed first under the program name.
func (r *Registry) WriteInventory(w io.Writer) error {
	type row struct {
		name     string
		synopsis string
	}
	var rows []row

	if len(r.RootOptions) > 0 {
		bindings, err := compileAll("", r.RootOptions, nil)
		if err != nil {
			return err
		}
		rows = append(rows, row{name: r.name(), synopsis: synopsis(bindings)})
	}
	for _, name := range r.order {
		bindings, err := compileAll(name, r.commands[name].Options, nil)
		if err != nil {
			return err
		}
		rows = append(rows, row{name: name, synopsis: synopsis(bindings)})
	}

	width := 0
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row.name))
	}
	for _, row := range rows {
		line := runewidth.FillRight(row.name, width)
		if row.synopsis != "" {
			line += "  " + row.synopsis
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// synopsis lists flags before positionals, each in declaration order.
func synopsis(bindings []*binding) string {
	var flags, positionals []string
	for _, b := range bindings {
		if b.positional {
			positionals = append(positionals, b.synopsis())
		} else {
			flags = append(flags, b.synopsis())
		}
	}
	return strings.Join(append(flags, positionals...), " ")
}
