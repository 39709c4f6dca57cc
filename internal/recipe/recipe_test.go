package recipe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDockerfileEmbedded(t *testing.T) {
	data := Dockerfile()
	if len(data) == 0 {
		t.Fatal("embedded recipe is empty")
	}
	if !bytes.HasPrefix(data, []byte("FROM ")) {
		t.Fatalf("recipe does not start with FROM: %q", data[:20])
	}
}

func TestWriteCreatesDirAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docker")
	if err := Write(dir); err != nil {
		t.Fatalf("write: %v", err)
	}
	path := filepath.Join(dir, Name)
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("stale write: %v", err)
	}
	if err := Write(dir); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, Dockerfile()) {
		t.Fatal("recipe was not overwritten")
	}
}
