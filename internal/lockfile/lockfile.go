// Package lockfile implements the advisory-lock liveness signal: a detached
// child holds an exclusive flock on a well-known file for its lifetime, and
// anyone else can probe the file non-blockingly to learn whether the child
// is still alive. The lock is cooperative; nothing enforces it.
package lockfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrHeld is returned by Acquire when another process holds the lock.
var ErrHeld = errors.New("lock already held")

// Lock is an acquired exclusive lock, held until Release or process exit.
type Lock struct {
	f *os.File
}

// Acquire opens or creates path and takes a non-blocking exclusive flock.
func Acquire(path string) (*Lock, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := flockNB(f); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrHeld, path)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock and closes the file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// File exposes the underlying descriptor, e.g. for exec.Cmd.ExtraFiles.
func (l *Lock) File() *os.File { return l.f }

// OpenLocked acquires the lock and hands back the raw file so the
// descriptor can be inherited by a child process. The flock follows the open
// file description across exec: once the parent closes its copy, the lock is
// released exactly when the child exits or closes the descriptor.
func OpenLocked(path string) (*os.File, error) {
	l, err := Acquire(path)
	if err != nil {
		return nil, err
	}
	return l.f, nil
}

// IsLocked probes path without blocking. It reports true while another
// process holds the exclusive lock and false once it is released. An error
// means the state could not be determined (e.g. the file cannot be opened);
// callers must not treat that as "not locked".
func IsLocked(path string) (bool, error) {
	f, err := open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	if err := flockNB(f); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return true, nil
		}
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	// Acquired, so nobody held it; closing the file drops it again.
	return false, nil
}

func open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
}

func flockNB(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
