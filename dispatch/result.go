package dispatch

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Outcome classifies how a dispatch ended.
type Outcome int

const (
	// Succeeded means the handler returned without error.
	Succeeded Outcome = iota
	// Exited means termination with a specific code was requested, either
	// by the handler or bootstrap through Exit, or by the argument parser
	// after printing help or a usage error.
	Exited
	// Failed means the bootstrap or handler failed or panicked, or the
	// command tree could not be built.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// UsageExitCode is the exit code for a malformed command line.
const UsageExitCode = 2

// Result is the outcome of a single Execute call.
type Result struct {
	Outcome Outcome
	// Command is the resolved command name, if parsing got that far.
	Command string
	// Value is the handler's return value when Outcome is Succeeded.
	Value any
	// Code is the requested exit code when Outcome is Exited.
	Code int
	// Err is the failure diagnostic when Outcome is Failed, and the
	// usage error or *ExitError when Outcome is Exited.
	Err error
}

// ExitCode maps r onto a process exit code.
func (r Result) ExitCode() int {
	switch r.Outcome {
	case Succeeded:
		return 0
	case Exited:
		return r.Code
	}
	return 1
}

// ExitError requests that the process end with Code. Handlers and
// bootstraps return it, usually through Exit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit returns an error requesting process termination with code.
func Exit(code int) error {
	return &ExitError{Code: code}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// failure classifies an error returned by a bootstrap or handler.
func failure(command string, err error) Result {
	var exit *ExitError
	if errors.As(err, &exit) {
		return Result{Outcome: Exited, Command: command, Code: exit.Code, Err: err}
	}
	if _, ok := err.(stackTracer); !ok {
		err = pkgerrors.WithStack(err)
	}
	return Result{Outcome: Failed, Command: command, Err: err}
}

// recovered classifies a panic value. It must be called from the deferred
// function so the captured stack includes the panicking frame.
func recovered(command string, p any) Result {
	if err, ok := p.(error); ok {
		var exit *ExitError
		if errors.As(err, &exit) {
			return Result{Outcome: Exited, Command: command, Code: exit.Code, Err: err}
		}
		return Result{Outcome: Failed, Command: command, Err: pkgerrors.Wrap(err, "panic")}
	}
	return Result{Outcome: Failed, Command: command, Err: pkgerrors.Errorf("panic: %v", p)}
}
