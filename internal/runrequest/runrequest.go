// Package runrequest orchestrates one end-to-end run: filtering executors
// by availability, allocating one scratch checkout per survivor, launching
// them concurrently, and collecting per-agent results and change summaries.
package runrequest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/takumi3488/parari/internal/agent"
	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/parerr"
	"github.com/takumi3488/parari/internal/vcs"
	"github.com/takumi3488/parari/internal/worktree"
)

var log = logging.WithComponent("runrequest")

// Status is one point in an agent's lifecycle during a run.
type Status int

const (
	Pending Status = iota
	Running
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent reports one status transition for one agent.
type ProgressEvent struct {
	AgentName string
	Status    Status
}

// ProgressFunc receives ProgressEvents as a run proceeds. It may be called
// concurrently from multiple goroutines, once per agent per transition.
type ProgressFunc func(ProgressEvent)

// TaskResult bundles one executor's ExecutionResult with the scratch
// checkout it ran in and the change summary computed afterward. ChangeSummary
// is nil only if the summary probe itself failed.
type TaskResult struct {
	Result        *agent.ExecutionResult
	ScratchPath   string
	ChangeSummary *vcs.ChangeSummary
}

// Run filters executors by availability, allocates a scratch checkout per
// survivor through manager, launches them concurrently, and returns the
// surviving TaskResults. Results are collected in completion-agnostic order
// but always returned in the order the corresponding executor appears in
// the availability-filtered list.
func Run(ctx context.Context, prompt string, executors []agent.Executor, manager *worktree.Manager, progress ProgressFunc) ([]*TaskResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	var available []agent.Executor
	for _, e := range executors {
		if e.IsAvailable() {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		return nil, &parerr.NoExecutorsAvailable{}
	}
	log.Debug("executors filtered by availability", "available", len(available), "requested", len(executors))

	names := make([]string, len(available))
	for i, e := range available {
		names[i] = e.Name()
		progress(ProgressEvent{AgentName: e.Name(), Status: Pending})
	}

	checkouts, err := manager.Create(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*vcs.ScratchCheckout, len(checkouts))
	for _, c := range checkouts {
		byName[c.ExecutorName] = c
	}

	results := make([]*TaskResult, len(available))

	g := new(errgroup.Group)
	for i, e := range available {
		i, e := i, e
		checkout, ok := byName[e.Name()]
		if !ok {
			// No checkout was allocated for this executor, so there is
			// nothing to run for it. manager.Create returns an error, handled
			// above, whenever any allocation fails, so this is a guard only.
			continue
		}
		g.Go(func() error {
			results[i] = runOne(ctx, prompt, e, checkout, progress)
			return nil
		})
	}
	_ = g.Wait() // task-level failures never abort siblings; see runOne

	survivors := make([]*TaskResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			survivors = append(survivors, r)
		}
	}
	return survivors, nil
}

// runOne runs a single executor to completion and reports its outcome via
// progress. It returns nil if the invocation itself could not be completed
// (spawn failure, missing working directory), matching the "drop that task"
// policy in the propagation design.
func runOne(ctx context.Context, prompt string, e agent.Executor, checkout *vcs.ScratchCheckout, progress ProgressFunc) *TaskResult {
	progress(ProgressEvent{AgentName: e.Name(), Status: Running})

	result, err := e.Execute(ctx, prompt, checkout.Path)
	if err != nil {
		logging.WarnContext(ctx, "executor invocation failed", "agent", e.Name(), "error", err)
		progress(ProgressEvent{AgentName: e.Name(), Status: Failed})
		return nil
	}

	var summary *vcs.ChangeSummary
	if s, sErr := vcs.ChangeSummary(checkout.Path); sErr == nil {
		summary = s
	} else {
		logging.WarnContext(ctx, "change summary probe failed", "agent", e.Name(), "error", sErr)
	}

	if result.Success {
		progress(ProgressEvent{AgentName: e.Name(), Status: Completed})
	} else {
		progress(ProgressEvent{AgentName: e.Name(), Status: Failed})
	}

	return &TaskResult{Result: result, ScratchPath: checkout.Path, ChangeSummary: summary}
}
