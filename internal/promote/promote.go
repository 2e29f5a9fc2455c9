// Package promote implements the promotion engine: copying a winning
// scratch checkout's files onto the user's working tree, excluding the
// version-control metadata directory.
package promote

import (
	"io"
	"os"
	"path/filepath"

	"github.com/takumi3488/parari/internal/logging"
	"github.com/takumi3488/parari/internal/parerr"
)

var log = logging.WithComponent("promote")

// vcsMetadataDir is the entry name the walker never enters or copies. In a
// linked worktree it is a file pointing at the main repository rather than
// a directory.
const vcsMetadataDir = ".git"

// Apply recursively, depth-first walks src (a winning scratch checkout) and
// overwrites dst (the user's working tree) file by file. It skips any entry
// named exactly vcsMetadataDir, directory or file, creates destination directories
// with recursive ensure-exists semantics, unlinks an existing destination
// file before copying over it, and skips symbolic links in either
// direction. It performs no merging, conflict detection, or staging: every
// path present in src that Apply visits is blindly overwritten in dst.
func Apply(src, dst string) error {
	return applyDir(src, dst)
}

func applyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return &parerr.IoFailure{Op: "promote readdir", Err: err}
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return &parerr.IoFailure{Op: "promote mkdir", Err: err}
	}

	for _, entry := range entries {
		if entry.Name() == vcsMetadataDir {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Lstat(srcPath)
		if err != nil {
			return &parerr.IoFailure{Op: "promote lstat", Err: err}
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			log.Debug("skipping symlink", "path", srcPath)
			continue
		case info.IsDir():
			if err := applyDir(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := applyFile(srcPath, dstPath, info.Mode().Perm()); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyFile(src, dst string, perm os.FileMode) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return &parerr.IoFailure{Op: "promote unlink", Err: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &parerr.IoFailure{Op: "promote open", Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &parerr.IoFailure{Op: "promote create", Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &parerr.IoFailure{Op: "promote copy", Err: err}
	}
	return nil
}
