// Package scratchroot resolves the process-wide directory that holds every
// scratch checkout and the fleet cap that bounds how many may coexist on
// disk at once.
package scratchroot

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaxWorktrees is the fleet cap: the maximum number of scratch checkouts
// permitted to coexist under the scratch root. Excess entries are evicted
// oldest-first by their embedded timestamp before new checkouts are
// allocated.
const MaxWorktrees = 20

// BaseDir returns "<home>/.parari". Failure to resolve the user's home
// directory is treated as fatal at process start, not a recoverable runtime
// error, so this panics rather than returning an error.
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("parari: cannot resolve user home directory: %v", err))
	}
	return filepath.Join(home, ".parari")
}

// WorktreesDir returns "<BaseDir>/worktrees", creating it (and any missing
// parents) if it does not already exist.
func WorktreesDir() (string, error) {
	dir := filepath.Join(BaseDir(), "worktrees")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating scratch root %q: %w", dir, err)
	}
	return dir, nil
}
