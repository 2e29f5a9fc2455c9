// Package agent defines the uniform executor capability — name,
// availability probe, and execute — that every concrete AI assistant CLI
// implements, plus the interleaved stdout/stderr capture protocol shared by
// all of them.
package agent

import "context"

// Kind tags one line of an executor's output by the stream it arrived on.
type Kind int

const (
	Stdout Kind = iota
	Stderr
)

// OutputLine is one line of a child process's output, tagged with the
// stream it came from and positioned in real-time arrival order relative to
// every other line (from either stream) in the same ExecutionResult.
type OutputLine struct {
	Kind Kind
	Text string
}

// ExecutionResult is the outcome of running one executor against one
// prompt in one working directory.
//
// Stdout and Stderr are newline-joined projections of the Stdout(_) and
// Stderr(_) entries of OutputLines respectively; OutputLines is the ground
// truth.
type ExecutionResult struct {
	Name        string
	Success     bool
	Stdout      string
	Stderr      string
	OutputLines []OutputLine
	ExitCode    *int
}

// Executor is the capability every concrete AI assistant CLI adapter (and
// the mock adapter used in tests) exposes.
type Executor interface {
	// Name is a stable identifier, matched case-insensitively against the
	// -a/--agents CLI flag.
	Name() string
	// IsAvailable reports whether the underlying binary is discoverable on
	// the host's command search path.
	IsAvailable() bool
	// Execute runs prompt with the working directory cwd. It fails only for
	// WorkingDirectoryMissing or a genuine spawn/plumbing error; a non-zero
	// exit status is reported as ExecutionResult.Success == false, not as a
	// returned error.
	Execute(ctx context.Context, prompt, cwd string) (*ExecutionResult, error)
}
