// Package recipe ships the packaged image build recipe. The runner copies
// it into the build directory before every image build so the build context
// never depends on the module's install location.
package recipe

import (
	_ "embed"
	"os"
	"path/filepath"
)

//go:embed Dockerfile
var dockerfile []byte

// Name is the file name the recipe is written under.
const Name = "Dockerfile"

// Dockerfile returns the embedded recipe.
func Dockerfile() []byte {
	out := make([]byte, len(dockerfile))
	copy(out, dockerfile)
	return out
}

// Write places the recipe in dir, creating dir if absent and overwriting a
// previous copy.
func Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, Name), dockerfile, 0o644)
}
