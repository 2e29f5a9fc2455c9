package worktree

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/vcs"
)

// registryEntry is one live scratch checkout tracked by the process-global
// registry, alongside the repo root it belongs to. It keeps the checkout's
// own lock handle (not just its path) so the shutdown drain can release
// that handle before removal, the same way the owning manager's Cleanup
// does - see vcs.RemoveScratch.
type registryEntry struct {
	checkout *vcs.ScratchCheckout
	repoRoot string
}

var (
	registryMu      sync.Mutex
	registryEntries = map[string]registryEntry{}
	signalOnce      sync.Once
)

// Register records a live scratch checkout in the process-global registry.
// Every live ScratchCheckout must be registered so a crash or interrupt can
// still find it during the shutdown drain.
func Register(sc *vcs.ScratchCheckout, repoRoot string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registryEntries[sc.Path] = registryEntry{checkout: sc, repoRoot: repoRoot}
}

// Unregister removes a scratch checkout from the registry once it has been
// removed from disk through the normal cleanup path.
func Unregister(path string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registryEntries, path)
}

// RegisteredCount reports how many entries are currently tracked. Exposed
// for tests.
func RegisteredCount() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(registryEntries)
}

// DrainAll removes every scratch checkout currently tracked in the registry
// and clears it. The handler installed by InstallSignalHandler calls it; the
// normal exit path goes through Manager.Cleanup instead. It is safe to call
// repeatedly and from any goroutine.
// Every entry was registered by this same process, so removal goes through
// vcs.RemoveScratch (release our own lock handle, then remove) rather than
// the orphan-sweep path: a liveness probe cannot tell a lock held under our
// own PID from an orphaned one.
func DrainAll() {
	registryMu.Lock()
	entries := make([]registryEntry, 0, len(registryEntries))
	for _, e := range registryEntries {
		entries = append(entries, e)
	}
	registryEntries = map[string]registryEntry{}
	registryMu.Unlock()

	for _, e := range entries {
		vcs.RemoveScratch(e.repoRoot, e.checkout)
	}
}

// InstallSignalHandler installs a one-shot handler for SIGINT/SIGTERM that
// drains the registry and exits with code 130. It is safe to call more than
// once; only the first call installs the handler. The main entry point
// should call this exactly once at startup.
func InstallSignalHandler() {
	signalOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			logging.Warn("interrupt received, draining scratch checkouts")
			DrainAll()
			os.Exit(130)
		}()
	})
}
