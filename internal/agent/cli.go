package agent

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/parerr"
)

// CLIExecutor is the single Executor implementation shared by every
// concrete AI assistant CLI adapter; only the command name and argv recipe
// differ between claude, gemini, and codex.
type CLIExecutor struct {
	name    string
	command string
	argv    func(prompt string) []string
	log     *slog.Logger
}

// NewClaude returns the adapter for the claude CLI:
// `claude --print --dangerously-skip-permissions <prompt>`.
func NewClaude() *CLIExecutor {
	return &CLIExecutor{
		name:    "claude",
		command: "claude",
		argv: func(prompt string) []string {
			return []string{"--print", "--dangerously-skip-permissions", prompt}
		},
		log: logging.WithComponent("agent.claude"),
	}
}

// NewGemini returns the adapter for the gemini CLI: `gemini --yolo <prompt>`.
func NewGemini() *CLIExecutor {
	return &CLIExecutor{
		name:    "gemini",
		command: "gemini",
		argv: func(prompt string) []string {
			return []string{"--yolo", prompt}
		},
		log: logging.WithComponent("agent.gemini"),
	}
}

// NewCodex returns the adapter for the codex CLI:
// `codex --full-auto exec <prompt>`.
func NewCodex() *CLIExecutor {
	return &CLIExecutor{
		name:    "codex",
		command: "codex",
		argv: func(prompt string) []string {
			return []string{"--full-auto", "exec", prompt}
		},
		log: logging.WithComponent("agent.codex"),
	}
}

// Name returns the executor's stable identifier.
func (e *CLIExecutor) Name() string { return e.name }

// IsAvailable reports whether the adapter's binary is on the search path.
func (e *CLIExecutor) IsAvailable() bool {
	_, err := exec.LookPath(e.command)
	return err == nil
}

// Execute runs the configured CLI against prompt with working directory
// cwd.
func (e *CLIExecutor) Execute(ctx context.Context, prompt, cwd string) (*ExecutionResult, error) {
	if _, err := os.Stat(cwd); err != nil {
		return nil, &parerr.WorkingDirectoryMissing{Path: cwd}
	}

	cmd := exec.CommandContext(ctx, e.command, e.argv(prompt)...)
	cmd.Dir = cwd

	e.log.Debug("starting executor", slog.String("command", e.command), slog.String("cwd", cwd))

	result, err := captureInterleaved(cmd)
	if err != nil {
		return nil, &parerr.ExecutorFailed{Name: e.name, Err: err}
	}
	result.Name = e.name
	return result, nil
}

// Executors returns the default fleet: claude, gemini, codex, in that
// order.
func Executors() []Executor {
	return []Executor{NewClaude(), NewGemini(), NewCodex()}
}
