// Package builddir fixes the on-disk layout the runner expects under a
// build directory. The directory itself is owned by the caller; the runner
// only reads and writes inside it.
package builddir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmalewski/runbot/engine"
)

// Layout names the well-known paths under a build directory.
type Layout struct {
	Root      string
	DockerDir string
	LogsDir   string
	DataDir   string
	// LockPath is the advisory lock file used as a liveness signal for
	// detached runs.
	LockPath string
	// EntryPoint is the runnable entry the container executes and whose
	// first line selects the dependency installer.
	EntryPoint string
}

// New derives the layout for root. It does not touch the filesystem.
func New(root string) Layout {
	logs := filepath.Join(root, "logs")
	return Layout{
		Root:       root,
		DockerDir:  filepath.Join(root, "docker"),
		LogsDir:    logs,
		DataDir:    filepath.Join(root, "datadir"),
		LockPath:   filepath.Join(logs, "lock.txt"),
		EntryPoint: filepath.Join(root, engine.EntryPoint),
	}
}

// Ensure creates the logs and data directories. The docker directory is
// created by the image build, which owns its contents.
func (l Layout) Ensure() error {
	if l.Root == "" {
		return errors.New("build directory is required")
	}
	info, err := os.Stat(l.Root)
	if err != nil {
		return fmt.Errorf("build directory %q: %w", l.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("build directory %q is not a directory", l.Root)
	}
	for _, dir := range []string{l.LogsDir, l.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// LogPath returns the path of a per-run log file under logs/.
func (l Layout) LogPath(name string) string {
	return filepath.Join(l.LogsDir, name)
}
