package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMockRecordsCallsAndPopsResponses(t *testing.T) {
	cwd := t.TempDir()
	m := NewMock("mockA").
		WithSuccess("first").
		WithFailure("boom")

	r1, err := m.Execute(context.Background(), "prompt1", cwd)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !r1.Success || r1.Stdout != "first" {
		t.Fatalf("r1 = %+v, want success stdout=first", r1)
	}

	r2, err := m.Execute(context.Background(), "prompt2", cwd)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if r2.Success || r2.Stderr != "boom" {
		t.Fatalf("r2 = %+v, want failure stderr=boom", r2)
	}

	if m.CallCount() != 2 {
		t.Fatalf("CallCount() = %d, want 2", m.CallCount())
	}
	if !m.WasCalledWith("prompt1") || !m.WasCalledWith("prompt2") {
		t.Fatalf("WasCalledWith missing an expected prompt: %+v", m.Calls())
	}

	m.ClearCalls()
	if m.CallCount() != 0 {
		t.Fatalf("CallCount() after ClearCalls = %d, want 0", m.CallCount())
	}
}

func TestMockQueueExhaustedDefaultsToSuccess(t *testing.T) {
	cwd := t.TempDir()
	m := NewMock("mockA")

	r, err := m.Execute(context.Background(), "p", cwd)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected default success result, got %+v", r)
	}
}

func TestMockWorkingDirectoryMissing(t *testing.T) {
	m := NewMock("mockA")
	_, err := m.Execute(context.Background(), "p", filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected WorkingDirectoryMissing error")
	}
}

func TestMockAppliesFileMutations(t *testing.T) {
	cwd := t.TempDir()
	m := NewMock("mockB").WithSuccess("ok").WithMutation(
		Mutation{Op: MutationWrite, Path: "src/main.rs", Content: []byte("B")},
	)

	if _, err := m.Execute(context.Background(), "p", cwd); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(cwd, "src", "main.rs"))
	if err != nil {
		t.Fatalf("expected mutation to create file: %v", err)
	}
	if string(content) != "B" {
		t.Fatalf("content = %q, want %q", content, "B")
	}
}

func TestMockOutputLinesGroundTruth(t *testing.T) {
	cwd := t.TempDir()
	m := NewMock("mockA").WithResponse(&ExecutionResult{
		Name:    "mockA",
		Success: true,
		Stdout:  "a\nc",
		Stderr:  "b\nd",
		OutputLines: []OutputLine{
			{Kind: Stdout, Text: "a"},
			{Kind: Stderr, Text: "b"},
			{Kind: Stdout, Text: "c"},
			{Kind: Stderr, Text: "d"},
		},
	})

	r, err := m.Execute(context.Background(), "p", cwd)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	assertOutputLinesGroundTruth(t, r)
}

func assertOutputLinesGroundTruth(t *testing.T, r *ExecutionResult) {
	t.Helper()
	var stdoutLines, stderrLines []string
	for _, l := range r.OutputLines {
		switch l.Kind {
		case Stdout:
			stdoutLines = append(stdoutLines, l.Text)
		case Stderr:
			stderrLines = append(stderrLines, l.Text)
		}
	}
	if joinLines(stdoutLines) != r.Stdout {
		t.Fatalf("stdout projection mismatch: %q vs %q", joinLines(stdoutLines), r.Stdout)
	}
	if joinLines(stderrLines) != r.Stderr {
		t.Fatalf("stderr projection mismatch: %q vs %q", joinLines(stderrLines), r.Stderr)
	}
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
