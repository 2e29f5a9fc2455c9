package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/takumi3488/parari/internal/parerr"
)

// MutationOp names one file-mutation applied to an executor's cwd before
// the mock returns, used to simulate what a real agent would have written.
type MutationOp int

const (
	MutationWrite MutationOp = iota
	MutationDelete
	MutationMkdir
)

// Mutation is one configured file change applied to cwd on the next call.
type Mutation struct {
	Op      MutationOp
	Path    string // relative to cwd
	Content []byte // used only for MutationWrite
}

// Call is one recorded invocation of a MockExecutor.
type Call struct {
	Prompt string
	Cwd    string
}

// MockExecutor is a deterministic Executor for tests: it pops a
// pre-configured response off a queue for each call, records every call it
// received, and applies a configurable file-mutation script to cwd before
// returning.
type MockExecutor struct {
	name      string
	available bool

	mu        sync.Mutex
	calls     []Call
	responses []*ExecutionResult
	mutations [][]Mutation
}

// NewMock creates a mock executor with the given name, available by
// default.
func NewMock(name string) *MockExecutor {
	return &MockExecutor{name: name, available: true}
}

// WithAvailable overrides the availability probe's return value.
func (m *MockExecutor) WithAvailable(available bool) *MockExecutor {
	m.available = available
	return m
}

// WithResponse enqueues a fully-specified response for the next call.
func (m *MockExecutor) WithResponse(result *ExecutionResult) *MockExecutor {
	m.responses = append(m.responses, result)
	m.mutations = append(m.mutations, nil)
	return m
}

// WithSuccess enqueues a successful response whose stdout is output.
// OutputLines is populated from stdout so the ground-truth invariant holds
// even for mock-generated results.
func (m *MockExecutor) WithSuccess(output string) *MockExecutor {
	return m.WithResponse(resultFromText(m.name, true, output, ""))
}

// WithFailure enqueues a failed response whose stderr is stderr.
func (m *MockExecutor) WithFailure(stderr string) *MockExecutor {
	return m.WithResponse(resultFromText(m.name, false, "", stderr))
}

// WithMutation attaches a file-mutation script to the most recently
// enqueued response (or to the next call if none has been enqueued yet).
func (m *MockExecutor) WithMutation(muts ...Mutation) *MockExecutor {
	if len(m.mutations) == 0 {
		m.mutations = append(m.mutations, muts)
		m.responses = append(m.responses, nil)
		return m
	}
	last := len(m.mutations) - 1
	m.mutations[last] = append(m.mutations[last], muts...)
	return m
}

// resultFromText builds an ExecutionResult whose OutputLines are derived
// from the given stdout/stderr strings, one OutputLine per newline-delimited
// segment of each non-empty string (empty segments included, so joining a
// side's lines gives back its string), stdout lines first then stderr lines — the
// mock has no real interleaving to observe, so it preserves the
// output_lines-is-ground-truth invariant by deriving from the text it was
// configured with rather than leaving output_lines empty.
func resultFromText(name string, success bool, stdout, stderr string) *ExecutionResult {
	r := &ExecutionResult{Name: name, Success: success, Stdout: stdout, Stderr: stderr}
	if stdout != "" {
		for _, line := range strings.Split(stdout, "\n") {
			r.OutputLines = append(r.OutputLines, OutputLine{Kind: Stdout, Text: line})
		}
	}
	if stderr != "" {
		for _, line := range strings.Split(stderr, "\n") {
			r.OutputLines = append(r.OutputLines, OutputLine{Kind: Stderr, Text: line})
		}
	}
	code := 0
	if !success {
		code = 1
	}
	r.ExitCode = &code
	return r
}

// Name returns the mock's configured name.
func (m *MockExecutor) Name() string { return m.name }

// IsAvailable returns the mock's configured availability.
func (m *MockExecutor) IsAvailable() bool { return m.available }

// Execute records the call, applies the next mutation script (if any) to
// cwd, and returns the next queued response, defaulting to an empty success
// result if the queue is exhausted.
func (m *MockExecutor) Execute(ctx context.Context, prompt, cwd string) (*ExecutionResult, error) {
	if _, err := os.Stat(cwd); err != nil {
		return nil, &parerr.WorkingDirectoryMissing{Path: cwd}
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Prompt: prompt, Cwd: cwd})
	var result *ExecutionResult
	var muts []Mutation
	if len(m.responses) > 0 {
		result = m.responses[0]
		m.responses = m.responses[1:]
		muts = m.mutations[0]
		m.mutations = m.mutations[1:]
	}
	m.mu.Unlock()

	for _, mut := range muts {
		if err := applyMutation(cwd, mut); err != nil {
			return nil, err
		}
	}

	if result == nil {
		result = resultFromText(m.name, true, "", "")
	}
	return result, nil
}

func applyMutation(cwd string, mut Mutation) error {
	target := filepath.Join(cwd, mut.Path)
	switch mut.Op {
	case MutationWrite:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &parerr.IoFailure{Op: "mock mutation mkdir", Err: err}
		}
		if err := os.WriteFile(target, mut.Content, 0o644); err != nil {
			return &parerr.IoFailure{Op: "mock mutation write", Err: err}
		}
	case MutationDelete:
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return &parerr.IoFailure{Op: "mock mutation delete", Err: err}
		}
	case MutationMkdir:
		if err := os.MkdirAll(target, 0o755); err != nil {
			return &parerr.IoFailure{Op: "mock mutation mkdir", Err: err}
		}
	}
	return nil
}

// Calls returns every recorded call, in order.
func (m *MockExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount reports how many times Execute has been called.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// WasCalledWith reports whether any recorded call used the given prompt.
func (m *MockExecutor) WasCalledWith(prompt string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Prompt == prompt {
			return true
		}
	}
	return false
}

// ClearCalls discards the recorded call log without affecting the response
// queue.
func (m *MockExecutor) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
