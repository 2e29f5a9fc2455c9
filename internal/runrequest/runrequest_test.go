package runrequest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/takumi3488/parari/internal/agent"
	"github.com/takumi3488/parari/internal/worktree"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial")
	return dir
}

func TestRunTwoExecutorHappyPath(t *testing.T) {
	repo := setupTestRepo(t)
	manager, err := worktree.NewWithDir(repo, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir: %v", err)
	}
	defer manager.Cleanup()

	mockA := agent.NewMock("mockA").WithSuccess("A").WithMutation(
		agent.Mutation{Op: agent.MutationWrite, Path: "src/main.rs", Content: []byte("A")},
	)
	mockB := agent.NewMock("mockB").WithSuccess("B").WithMutation(
		agent.Mutation{Op: agent.MutationWrite, Path: "src/main.rs", Content: []byte("B")},
		agent.Mutation{Op: agent.MutationWrite, Path: "src/lib.rs", Content: []byte("lib")},
	)

	var mu sync.Mutex
	var events []ProgressEvent
	progress := func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	results, err := Run(context.Background(), "do the thing", []agent.Executor{mockA, mockB}, manager, progress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	byName := map[string]*TaskResult{}
	for _, r := range results {
		byName[r.Result.Name] = r
	}

	if _, err := os.Stat(filepath.Join(byName["mockA"].ScratchPath, "README.md")); err != nil {
		t.Fatalf("expected README.md in mockA's checkout: %v", err)
	}
	contentA, err := os.ReadFile(filepath.Join(byName["mockA"].ScratchPath, "src", "main.rs"))
	if err != nil || string(contentA) != "A" {
		t.Fatalf("mockA main.rs = %q, %v, want A", contentA, err)
	}
	if _, err := os.Stat(filepath.Join(byName["mockA"].ScratchPath, "src", "lib.rs")); !os.IsNotExist(err) {
		t.Fatalf("expected no lib.rs in mockA's checkout")
	}

	contentB, err := os.ReadFile(filepath.Join(byName["mockB"].ScratchPath, "src", "main.rs"))
	if err != nil || string(contentB) != "B" {
		t.Fatalf("mockB main.rs = %q, %v, want B", contentB, err)
	}

	if len(events) == 0 {
		t.Fatal("expected progress events to be emitted")
	}
}

func TestRunAvailabilityFilter(t *testing.T) {
	repo := setupTestRepo(t)
	manager, err := worktree.NewWithDir(repo, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir: %v", err)
	}
	defer manager.Cleanup()

	available := agent.NewMock("available").WithSuccess("ok")
	unavailable1 := agent.NewMock("gone1").WithAvailable(false)
	unavailable2 := agent.NewMock("gone2").WithAvailable(false)

	results, err := Run(context.Background(), "p", []agent.Executor{unavailable1, available, unavailable2}, manager, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Result.Name != "available" {
		t.Fatalf("results[0].Result.Name = %q, want available", results[0].Result.Name)
	}
}

func TestRunNoExecutorsAvailable(t *testing.T) {
	repo := setupTestRepo(t)
	manager, err := worktree.NewWithDir(repo, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithDir: %v", err)
	}
	defer manager.Cleanup()

	gone := agent.NewMock("gone").WithAvailable(false)
	_, err = Run(context.Background(), "p", []agent.Executor{gone}, manager, nil)
	if err == nil {
		t.Fatal("expected NoExecutorsAvailable error")
	}
}
