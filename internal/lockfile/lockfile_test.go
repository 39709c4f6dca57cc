package lockfile

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestIsLockedNeverLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.txt")
	locked, err := IsLocked(path)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if locked {
		t.Fatal("expected unlocked for fresh path")
	}
}

func TestIsLockedWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.txt")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	locked, err := IsLocked(path)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !locked {
		t.Fatal("expected locked while held")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	locked, err = IsLocked(path)
	if err != nil {
		t.Fatalf("probe after release: %v", err)
	}
	if locked {
		t.Fatal("expected unlocked after release")
	}
}

func TestAcquireTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.txt")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer func() { _ = l.Release() }()
	if _, err := Acquire(path); err == nil {
		t.Fatal("expected second acquire to fail")
	}
}

func TestChildInheritsLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.txt")
	f, err := OpenLocked(path)
	if err != nil {
		t.Fatalf("open locked: %v", err)
	}
	cmd := exec.Command("sleep", "30")
	cmd.ExtraFiles = []*os.File{f}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	// Parent drops its copy; the child's inherited descriptor keeps the
	// lock alive.
	if err := f.Close(); err != nil {
		t.Fatalf("close parent copy: %v", err)
	}
	locked, err := IsLocked(path)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !locked {
		t.Fatal("expected lock held by child")
	}
	if err := cmd.Process.Kill(); err != nil {
		t.Fatalf("kill child: %v", err)
	}
	_ = cmd.Wait()
	deadline := time.Now().Add(2 * time.Second)
	for {
		locked, err = IsLocked(path)
		if err != nil {
			t.Fatalf("probe after exit: %v", err)
		}
		if !locked {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("lock still held after child exit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
