// Package worktree owns the bounded collection of scratch checkouts for a
// single run: it enforces the fleet cap by oldest-first eviction and
// registers every checkout it creates in the process-global registry so an
// abnormal exit cannot leave one orphaned.
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/parerr"
	"github.com/takumi3488/parari/internal/scratchroot"
	"github.com/takumi3488/parari/internal/vcs"
)

var log = logging.WithComponent("worktree")

// Manager holds one scratch root and the ordered list of ScratchCheckout it
// has personally created, for a single run.
type Manager struct {
	repoRoot     string
	worktreesDir string

	mu        sync.Mutex
	checkouts []*vcs.ScratchCheckout
}

// New canonicalizes repoPath's root through the version-control adapter and
// uses the process-wide scratch root for its checkouts.
func New(repoPath string) (*Manager, error) {
	dir, err := scratchroot.WorktreesDir()
	if err != nil {
		return nil, err
	}
	return NewWithDir(repoPath, dir)
}

// NewWithDir is like New but takes an explicit scratch directory, for tests
// that must not touch the real user home directory.
func NewWithDir(repoPath, worktreesDir string) (*Manager, error) {
	root, err := vcs.RepoRoot(repoPath)
	if err != nil {
		return nil, err
	}
	return &Manager{repoRoot: root, worktreesDir: worktreesDir}, nil
}

// Create allocates one scratch checkout per name, in order. names must be
// distinct and non-empty. Before any allocation it prunes the scratch root
// down to the fleet cap. If the i-th creation fails, the first i-1 remain
// registered and recorded; the caller (or the registry's shutdown drain) is
// responsible for their cleanup.
func (m *Manager) Create(ctx context.Context, names []string) ([]*vcs.ScratchCheckout, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("worktree: create requires at least one name")
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("worktree: duplicate executor name %q", n)
		}
		seen[n] = struct{}{}
	}

	if err := pruneToCap(m.repoRoot, m.worktreesDir); err != nil {
		return nil, err
	}

	created := make([]*vcs.ScratchCheckout, 0, len(names))
	for _, name := range names {
		sc, err := vcs.CreateScratch(ctx, m.repoRoot, m.worktreesDir, name)
		if err != nil {
			return created, err
		}
		Register(sc, m.repoRoot)

		m.mu.Lock()
		m.checkouts = append(m.checkouts, sc)
		m.mu.Unlock()

		created = append(created, sc)
	}
	return created, nil
}

// Get returns the checkout owned by the given executor name, or nil.
func (m *Manager) Get(name string) *vcs.ScratchCheckout {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.checkouts {
		if sc.ExecutorName == name {
			return sc
		}
	}
	return nil
}

// Cleanup removes every checkout this manager created, unregisters each
// from the global registry, and clears the internal list. Idempotent.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	checkouts := m.checkouts
	m.checkouts = nil
	m.mu.Unlock()

	for _, sc := range checkouts {
		vcs.RemoveScratch(m.repoRoot, sc)
		Unregister(sc.Path)
	}
}

// pruneToCap enumerates directory entries under worktreesDir, oldest-first
// by their lexicographically sortable timestamp prefix, and removes the
// head entry while the pre-existing count is at or above the fleet cap,
// leaving at most MaxWorktrees-1 entries. A following batch of more than one
// new checkout can therefore still take the total above MaxWorktrees. These
// entries are bare directory names, possibly left over from an earlier
// process entirely, so removal goes through the orphan path (lockfile
// liveness probe) rather than RemoveScratch, which assumes an in-memory
// lock handle this process itself holds.
func pruneToCap(repoRoot, worktreesDir string) error {
	entries, err := os.ReadDir(worktreesDir)
	if err != nil {
		return &parerr.IoFailure{Op: "read scratch root", Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	// os.ReadDir returns entries sorted by filename, which is chronological
	// order for our timestamp-prefixed directory names.

	for len(names) > scratchroot.MaxWorktrees-1 {
		head := names[0]
		names = names[1:]
		path := filepath.Join(worktreesDir, head)
		log.Debug("pruning scratch checkout over fleet cap", "path", path)
		vcs.RemoveOrphanedScratch(repoRoot, path)
		Unregister(path)
	}
	return nil
}
