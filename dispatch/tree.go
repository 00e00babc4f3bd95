package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrNoCommand is the usage error for a command line that names no command.
var ErrNoCommand = errors.New("a command is required")

// invocation is what a successful parse resolves to.
type invocation struct {
	command string
	args    Args
}

// parseTree is the cobra command tree built for a single run.
type parseTree struct {
	root   *cobra.Command
	parsed *invocation
}

// negativeMarker prefixes negative numbers on the command line so pflag
// hands them over as positionals instead of reading them as shorthands.
const negativeMarker = "\x00"

var negativeNumber = regexp.MustCompile(`^-\d+$|^-\d*\.\d+$`)

// compileAll compiles opts, rejecting flag names or destinations that are
// already taken by an earlier option.
func compileAll(command string, opts []Option, inherited []*binding) ([]*binding, error) {
	seenFlag := make(map[string]bool)
	seenDest := make(map[string]bool)
	for _, b := range inherited {
		seenDest[b.dest] = true
		seenFlag["--"+b.name] = true
		if b.short != "" {
			seenFlag["-"+b.short] = true
		}
	}
	out := make([]*binding, 0, len(opts))
	for _, opt := range opts {
		b, err := compile(opt)
		if err != nil {
			var oerr *OptionError
			if errors.As(err, &oerr) {
				oerr.Command = command
			}
			return nil, err
		}
		conflict := func(what string) error {
			return &OptionError{Option: opt, Command: command, Err: fmt.Errorf("%w: %s already defined", ErrBadArgs, what)}
		}
		if seenDest[b.dest] {
			return nil, conflict("destination " + b.dest)
		}
		seenDest[b.dest] = true
		if !b.positional {
			for _, name := range []string{"--" + b.name, "-" + b.short} {
				if name == "-" {
					continue
				}
				if seenFlag[name] {
					return nil, conflict(name)
				}
				seenFlag[name] = true
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func checkPositionals(command string, bindings []*binding) error {
	var positionals []*binding
	for _, b := range bindings {
		if b.positional {
			positionals = append(positionals, b)
		}
	}
	for i, b := range positionals {
		if b.variadic() && i != len(positionals)-1 {
			return &OptionError{Option: b.opt, Command: command, Key: KeyNargs,
				Err: fmt.Errorf("%w: only the last positional may take nargs %q", ErrBadValue, b.nargs)}
		}
	}
	return nil
}

// buildTree constructs a fresh cobra command tree from the registry.
func (r *Registry) buildTree() (*parseTree, error) {
	rootBindings, err := compileAll("", r.RootOptions, nil)
	if err != nil {
		return nil, err
	}
	for _, b := range rootBindings {
		if b.positional {
			return nil, &OptionError{Option: b.opt, Err: fmt.Errorf("%w: root options must be flags", ErrBadArgs)}
		}
	}

	t := &parseTree{}
	// Root options are local to the root and parsed while cobra traverses
	// to the subcommand, so they are only accepted before the command name.
	root := &cobra.Command{
		Use:              r.name(),
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ErrNoCommand
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	for _, b := range rootBindings {
		b.define(root.Flags())
	}

	for _, name := range r.order {
		entry := r.commands[name]
		bindings, err := compileAll(name, entry.Options, rootBindings)
		if err != nil {
			return nil, err
		}
		if err := checkPositionals(name, bindings); err != nil {
			return nil, err
		}
		sub, err := t.newSubcommand(root, name, rootBindings, bindings)
		if err != nil {
			return nil, err
		}
		root.AddCommand(sub)
	}

	t.root = root
	return t, nil
}

func (t *parseTree) newSubcommand(root *cobra.Command, name string, rootBindings, bindings []*binding) (*cobra.Command, error) {
	use := []string{name}
	var positionals []*binding
	for _, b := range bindings {
		if b.positional {
			positionals = append(positionals, b)
			use = append(use, b.synopsis())
		}
	}
	cmd := &cobra.Command{
		Use:  strings.Join(use, " "),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, raw []string) error {
			if err := checkRequired(root.Flags(), rootBindings); err != nil {
				return err
			}
			args := make(Args, len(rootBindings)+len(bindings))
			if err := readFlags(root.Flags(), rootBindings, args); err != nil {
				return err
			}
			if err := readFlags(cmd.Flags(), bindings, args); err != nil {
				return err
			}
			if err := assignPositionals(positionals, unmarkNegatives(raw), args); err != nil {
				return err
			}
			t.parsed = &invocation{command: name, args: args}
			return nil
		},
	}
	for _, b := range bindings {
		if b.positional {
			continue
		}
		b.define(cmd.Flags())
		if b.required {
			if err := cmd.MarkFlagRequired(b.name); err != nil {
				return nil, err
			}
		}
	}
	return cmd, nil
}

func readFlags(fs *pflag.FlagSet, bindings []*binding, into Args) error {
	for _, b := range bindings {
		if b.positional {
			continue
		}
		v, err := b.flagValue(fs)
		if err != nil {
			return err
		}
		if fs.Changed(b.name) {
			if err := b.checkChoices(v); err != nil {
				return err
			}
		}
		into[b.dest] = v
	}
	return nil
}

// checkRequired reports required root flags that were not given. Cobra only
// enforces required flags of the command it executes.
func checkRequired(fs *pflag.FlagSet, bindings []*binding) error {
	var missing []string
	for _, b := range bindings {
		if b.required && !fs.Changed(b.name) {
			missing = append(missing, b.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf(`required flag(s) "%s" not set`, strings.Join(missing, `", "`))
	}
	return nil
}

// assignPositionals distributes raw left to right. Optional positionals
// only take a value when enough remain for the positionals after them.
func assignPositionals(positionals []*binding, raw []string, into Args) error {
	minAfter := make([]int, len(positionals))
	total := 0
	for i := len(positionals) - 1; i >= 0; i-- {
		minAfter[i] = total
		total += positionals[i].minCount()
	}

	var missing []string
	i := 0
	for n, b := range positionals {
		var v any
		given := true
		switch b.nargs {
		case "":
			if i >= len(raw) {
				missing = append(missing, b.valueName())
				continue
			}
			parsed, err := parseValue(b.kind, raw[i])
			if err != nil {
				return invalidValue(b, raw[i])
			}
			v = parsed
			i++
		case "?":
			if len(raw)-i > minAfter[n] {
				parsed, err := parseValue(b.kind, raw[i])
				if err != nil {
					return invalidValue(b, raw[i])
				}
				v = parsed
				i++
			} else {
				given = false
				if b.hasDefault {
					v = b.def
				}
			}
		case "*", "+":
			end := max(len(raw)-minAfter[n], i)
			chunk := raw[i:end]
			i = end
			if len(chunk) == 0 {
				if b.nargs == "+" {
					missing = append(missing, b.valueName())
					continue
				}
				if b.hasDefault {
					v = b.def
					given = false
					break
				}
			}
			parsed, err := b.parseList(chunk)
			if err != nil {
				for _, s := range chunk {
					if _, perr := parseValue(b.kind, s); perr != nil {
						return invalidValue(b, s)
					}
				}
				return err
			}
			v = parsed
		}
		if given {
			if err := b.checkChoices(v); err != nil {
				return err
			}
		}
		into[b.dest] = v
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following arguments are required: %s", strings.Join(missing, ", "))
	}
	if i < len(raw) {
		return fmt.Errorf("unrecognized arguments: %s", strings.Join(raw[i:], " "))
	}
	return nil
}

func invalidValue(b *binding, s string) error {
	return fmt.Errorf("argument %s: invalid %s value: %q", b.displayName(), b.kind, s)
}

// parse runs the tree against args. A nil invocation with a nil error means
// cobra handled the command line itself, as it does for --help.
func (t *parseTree) parse(ctx context.Context, args []string) (*invocation, *cobra.Command, error) {
	if args == nil {
		args = []string{}
	}
	t.root.SetArgs(t.markNegatives(args))
	cmd, err := t.root.ExecuteContextC(ctx)
	if err != nil {
		return nil, cmd, err
	}
	return t.parsed, cmd, nil
}

// markNegatives prefixes negative numbers after the command name with
// negativeMarker, unless they are flag values or the command defines a digit
// shorthand such as -1.
func (t *parseTree) markNegatives(args []string) []string {
	out := slices.Clone(args)
	fs := t.root.Flags()
	var sub *cobra.Command
	needValue := false
	for i, arg := range out {
		switch {
		case needValue:
			needValue = false
		case arg == "--":
			return out
		case sub != nil && negativeNumber.MatchString(arg) && !hasDigitShorthand(fs):
			out[i] = negativeMarker + arg
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			needValue = takesValue(fs, arg)
		case sub == nil:
			sub = findSubcommand(t.root, arg)
			if sub == nil {
				return out
			}
			fs = sub.Flags()
		}
	}
	return out
}

func unmarkNegatives(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = strings.TrimPrefix(s, negativeMarker)
	}
	return out
}

// takesValue reports whether the flag token arg consumes the next token.
func takesValue(fs *pflag.FlagSet, arg string) bool {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		if strings.Contains(name, "=") {
			return false
		}
		f := fs.Lookup(name)
		return f != nil && f.NoOptDefVal == ""
	}
	shorts := arg[1:]
	for i := range len(shorts) {
		f := fs.ShorthandLookup(shorts[i : i+1])
		if f == nil {
			return false
		}
		if f.NoOptDefVal == "" {
			return i == len(shorts)-1
		}
	}
	return false
}

func hasDigitShorthand(fs *pflag.FlagSet) bool {
	found := false
	fs.VisitAll(func(f *pflag.Flag) {
		if len(f.Shorthand) == 1 && f.Shorthand[0] >= '0' && f.Shorthand[0] <= '9' {
			found = true
		}
	})
	return found
}

func findSubcommand(root *cobra.Command, name string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
