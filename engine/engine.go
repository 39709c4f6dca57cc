package engine

import (
	"context"
	"os"
)

// Engine builds images and manages build container runs.
type Engine interface {
	// Build produces the test image from a build directory.
	Build(ctx context.Context, spec BuildSpec) error
	// Start launches a container run and returns without waiting for it.
	Start(ctx context.Context, spec RunSpec) (Handle, error)
	// Stop stops the named container with the engine's default grace
	// period, blocking until the engine confirms. Stopping a container
	// that is not running returns an error.
	Stop(ctx context.Context, name string) error
}

// Handle is a started container run. The handle tracks the engine client
// process, not the container itself: the process exits when the container
// run ends.
type Handle interface {
	Pid() int
	// Wait blocks until the process exits or ctx is done. Safe to call
	// more than once.
	Wait(ctx context.Context) (ExitStatus, error)
	Signal(sig os.Signal) error
}
