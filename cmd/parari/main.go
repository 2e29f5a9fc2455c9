// Command parari runs several AI assistant CLIs against the same prompt in
// parallel, each inside its own disposable scratch checkout of the current
// repository, then lets the user compare their results and promote one
// winner into the real working tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/takumi3488/parari/internal/agent"
	"github.com/takumi3488/parari/internal/editor"
	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/parerr"
	"github.com/takumi3488/parari/internal/promote"
	"github.com/takumi3488/parari/internal/runrequest"
	"github.com/takumi3488/parari/internal/splitview"
	"github.com/takumi3488/parari/internal/vcs"
	"github.com/takumi3488/parari/internal/worktree"
)

var (
	directory string
	agentsCSV string
)

func main() {
	worktree.InstallSignalHandler()

	root := &cobra.Command{
		Use:   "parari [prompt]",
		Short: "Run AI coding agents in parallel and promote the best result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prompt string
			if len(args) == 1 {
				prompt = args[0]
			}
			return run(cmd.Context(), prompt)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVarP(&directory, "directory", "C", ".", "repository directory to run in")
	root.Flags().StringVarP(&agentsCSV, "agents", "a", "", "comma-separated subset of agents to run, by name")

	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func run(ctx context.Context, prompt string) error {
	repoRoot, err := vcs.RepoRoot(directory)
	if err != nil {
		return err
	}

	if prompt == "" {
		p, err := editor.Prompt()
		if err != nil {
			return err
		}
		prompt = p
	}

	executors, err := selectExecutors(agentsCSV)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	ctx = logging.ContextWithCorrelationID(ctx, runID)
	logging.InfoContext(ctx, "run starting", "agents", len(executors), "repo", repoRoot)

	manager, err := worktree.New(repoRoot)
	if err != nil {
		return err
	}
	defer manager.Cleanup()

	results, err := runrequest.Run(ctx, prompt, executors, manager, printProgress)
	if err != nil {
		return err
	}

	infos := runrequest.ToResultInfos(results)

	var selection splitview.Selection
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		logging.Suppress()
		selection, err = splitview.Run(infos)
	} else {
		selection, err = splitview.RunPlain(infos, os.Stdout, os.Stdin)
	}
	if err != nil {
		return err
	}
	if selection.Cancelled {
		return &parerr.UserCancelled{}
	}

	winner := results[selection.Index]
	if err := promote.Apply(winner.ScratchPath, repoRoot); err != nil {
		return err
	}

	fmt.Printf("Promoted %s's changes into %s\n", infos[selection.Index].Name, repoRoot)
	return nil
}

// selectExecutors resolves the default fleet, optionally narrowed by a
// comma-separated -a/--agents list matched case-insensitively against each
// executor's name. An explicitly requested name that matches no known
// executor, or one that is not available on this host, fails fast with
// ExecutorMissing rather than being silently dropped.
func selectExecutors(csv string) ([]agent.Executor, error) {
	all := agent.Executors()
	if csv == "" {
		return all, nil
	}

	byName := make(map[string]agent.Executor, len(all))
	for _, e := range all {
		byName[strings.ToLower(e.Name())] = e
	}

	parts := strings.Split(csv, ",")
	selected := make([]agent.Executor, 0, len(parts))
	for _, name := range parts {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		e, ok := byName[strings.ToLower(name)]
		if !ok || !e.IsAvailable() {
			return nil, &parerr.ExecutorMissing{Name: name}
		}
		selected = append(selected, e)
	}
	return selected, nil
}

func printProgress(ev runrequest.ProgressEvent) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", ev.AgentName, ev.Status)
}

// exitCodeFor maps the top-level error taxonomy to a process exit code:
// 0 is handled by cobra returning nil, 130 is reserved for the interrupt
// signal handler, and everything else here maps to 1.
func exitCodeFor(err error) int {
	var cancelled *parerr.UserCancelled
	if errors.As(err, &cancelled) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
