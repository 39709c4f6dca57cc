package builddir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCreatesLayout(t *testing.T) {
	root := t.TempDir()
	l := New(root)
	if err := l.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, dir := range []string{l.LogsDir, l.DataDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(l.DockerDir); !os.IsNotExist(err) {
		t.Fatalf("docker dir should not be created by Ensure: %v", err)
	}
}

func TestEnsureRejectsMissingRoot(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing"))
	if err := l.Ensure(); err == nil {
		t.Fatal("expected error for missing build directory")
	}
}

func TestWellKnownPaths(t *testing.T) {
	l := New("/tmp/b")
	if l.LockPath != "/tmp/b/logs/lock.txt" {
		t.Fatalf("lock path: %s", l.LockPath)
	}
	if l.EntryPoint != "/tmp/b/odoo-bin" {
		t.Fatalf("entry point: %s", l.EntryPoint)
	}
	if got := l.LogPath("logs-partial.txt"); got != "/tmp/b/logs/logs-partial.txt" {
		t.Fatalf("log path: %s", got)
	}
}
