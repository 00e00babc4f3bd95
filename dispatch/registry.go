package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// Handler runs a command with its parsed arguments. A non-nil value is
// printed by Run.
type Handler func(ctx context.Context, args Args) (any, error)

// Bootstrap transforms parsed arguments before the handler sees them. Its
// result replaces the arguments entirely.
type Bootstrap func(ctx context.Context, args Args) (Args, error)

// Command is a registered command.
type Command struct {
	Name    string
	Handler Handler
	Options []Option
}

// Registry maps command names to handlers and dispatches command lines to
// them. Configure it and register commands before calling Run; it is not
// safe for concurrent mutation.
type Registry struct {
	// Name is the program name shown in usage. Defaults to the base name
	// of os.Args[0].
	Name string
	// RootOptions are flags accepted before the command name.
	RootOptions []Option
	// Bootstrap, if set, replaces the parsed arguments before dispatch.
	Bootstrap Bootstrap

	Stdout io.Writer
	Stderr io.Writer
	// Logger receives failures. When nil, Run builds a logrus logger on
	// Stderr at the requested level.
	Logger *logrus.Logger

	commands map[string]*Command
	order    []string
}

// New creates an empty registry.
func New(name string) *Registry {
	return &Registry{
		Name:     name,
		commands: make(map[string]*Command),
	}
}

// Register sets the handler and options for name. Registering a name again
// replaces the earlier entry but keeps its place in help output.
func (r *Registry) Register(name string, h Handler, opts ...Option) {
	if r.commands == nil {
		r.commands = make(map[string]*Command)
	}
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = &Command{Name: name, Handler: h, Options: slices.Clone(opts)}
}

// Decorate returns a function that registers a handler under its own Go
// function name and hands back a wrapper calling it directly.
//
//	greet := r.Decorate(dispatch.NewOption(nil, "name"))(greet)
func (r *Registry) Decorate(opts ...Option) func(Handler) Handler {
	return func(h Handler) Handler {
		r.Register(HandlerName(h), h, opts...)
		return func(ctx context.Context, args Args) (any, error) {
			return h(ctx, args)
		}
	}
}

// HandlerName is the unqualified Go name of h's function. Method values
// yield the method name; closures yield names like "func1".
func HandlerName(h Handler) string {
	fn := runtime.FuncForPC(reflect.ValueOf(h).Pointer())
	if fn == nil {
		return ""
	}
	name := strings.TrimSuffix(fn.Name(), "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	if !ok {
		return Command{}, false
	}
	return *c, true
}

// Commands lists registered command names in registration order.
func (r *Registry) Commands() []string {
	return slices.Clone(r.order)
}

func (r *Registry) name() string {
	if r.Name != "" {
		return r.Name
	}
	return filepath.Base(os.Args[0])
}

func (r *Registry) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Registry) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Execute parses args and dispatches to the selected command without
// printing the handler's value or logging failures. Usage errors and help
// are still written by the argument parser.
func (r *Registry) Execute(ctx context.Context, args []string) Result {
	tree, err := r.buildTree()
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("build command tree: %w", err)}
	}
	tree.root.SetOut(r.stdout())
	tree.root.SetErr(r.stderr())

	inv, cmd, err := tree.parse(ctx, args)
	if err != nil {
		stderr := r.stderr()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if cmd != nil {
			fmt.Fprint(stderr, cmd.UsageString())
		}
		return Result{Outcome: Exited, Code: UsageExitCode, Err: err}
	}
	if inv == nil {
		return Result{Outcome: Exited, Code: 0}
	}
	return r.dispatch(ctx, inv)
}

func (r *Registry) dispatch(ctx context.Context, inv *invocation) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = recovered(inv.command, p)
		}
	}()

	args := inv.args
	if r.Bootstrap != nil {
		next, err := withTraceRegion(ctx, "dispatch.bootstrap", func() (Args, error) {
			return r.Bootstrap(ctx, args)
		})
		if err != nil {
			return failure(inv.command, fmt.Errorf("bootstrap: %w", err))
		}
		args = next
		if args == nil {
			args = Args{}
		}
	}

	entry, ok := r.commands[inv.command]
	if !ok {
		return failure(inv.command, fmt.Errorf("command %s is not registered", inv.command))
	}
	value, err := withTraceRegion(ctx, "dispatch.command."+inv.command, func() (any, error) {
		return entry.Handler(ctx, args)
	})
	if err != nil {
		return failure(inv.command, err)
	}
	return Result{Outcome: Succeeded, Command: inv.command, Value: value}
}
