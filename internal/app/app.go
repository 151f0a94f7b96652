// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"krakviz/internal/cli"
	"krakviz/internal/taxtree"
	"krakviz/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitNoTaxa    = 1
	ExitUsage     = 2
	ExitOutput    = 3
	ExitCancelled = 130
)

// errNoTaxa ends a run whose observations were all filtered or unresolved.
var errNoTaxa = errors.New("no taxa left after filtering and lineage lookup")

// outputError marks failures writing results.
type outputError struct{ err error }

func (e *outputError) Error() string { return e.err.Error() }
func (e *outputError) Unwrap() error { return e.err }

// wrapOutput classifies a write error; broken pipes count as success.
func wrapOutput(err error) error {
	if err == nil || writers.IsBrokenPipe(err) {
		return nil
	}
	return &outputError{err: err}
}

func exitCode(err error) int {
	var (
		assemblyErr *taxtree.AssemblyError
		lineageErr  *taxtree.LineageError
		outErr      *outputError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, errNoTaxa):
		return ExitNoTaxa
	case errors.As(err, &assemblyErr), errors.As(err, &lineageErr), errors.As(err, &outErr):
		return ExitOutput
	default:
		return ExitUsage
	}
}

// RunContext executes one krakviz command line and returns the process exit
// code. Reports go to stdout; logs and errors go to stderr.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	a := &application{stdout: outw, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(argv)
	root.SetOut(outw)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(parent)
	if err == nil && parent.Err() != nil {
		err = parent.Err()
	}
	if ferr := wrapOutput(outw.Flush()); err == nil {
		err = ferr
	}
	if merr := a.writeMetrics(); err == nil && merr != nil {
		err = merr
	}

	code := exitCode(err)
	switch {
	case code == ExitOK, code == ExitCancelled:
	case code == ExitNoTaxa:
		a.logger().Warn(err.Error())
	default:
		_, _ = fmt.Fprintln(stderr, "error:", err)
		if cli.IsUsage(err) && cmd != nil {
			_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
	}
	a.close()
	return code
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
