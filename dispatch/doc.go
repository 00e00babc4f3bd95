// Package dispatch maps command names to handler functions and runs them
// from a command line.
//
// Callers register named commands, each with an ordered list of Option
// descriptors. Registry.Run builds a cobra command tree from those
// descriptors, parses the arguments, optionally passes the parsed values
// through a Bootstrap transform, and invokes the selected Handler with the
// result. The outcome of a run is a Result which maps onto a process exit
// code:
//
//	0     the handler succeeded; a non-nil return value is printed
//	1     the bootstrap or handler failed; the failure is logged
//	2     the command line was malformed; cobra printed the usage
//	code  the bootstrap or handler returned Exit(code)
//
// Root options are accepted only before the command name, and command
// options only after it. Negative numbers such as -1 or -2.5 following the
// command name are read as positional values unless the command defines a
// digit shorthand; "--" ends option parsing as usual. Choices constrain
// values given on the command line, not configured defaults.
//
// A minimal program:
//
//	r := dispatch.New("tool")
//	r.Register("add", add, dispatch.NewOption(dispatch.Config{
//		"type":  dispatch.Int,
//		"nargs": "+",
//	}, "nums"))
//	r.Main()
package dispatch
