package engine

// Fixed paths and ports inside the build container. The build directory is
// always mounted at MountPath and the service always listens on InternalPort;
// only the host side of either mapping varies per run.
const (
	MountPath      = "/data/build"
	PostgresSocket = "/var/run/postgresql"
	InternalPort   = 8069
	EntryPoint     = "odoo-bin"
)

// DefaultImageTag is the tag applied by every build and expected by every
// run. The documented :tests-VERSION scheme is not applied here; deployments
// that want it set engine.image_tag in the config.
const DefaultImageTag = "odoo:runbot_tests"

// BuildSpec describes an image build from a build directory.
type BuildSpec struct {
	BuildDir string
	Tag      string
}

// RunSpec describes one build container run.
type RunSpec struct {
	// BuildDir is mounted read-write at MountPath. Must exist and contain
	// the entry point at its root.
	BuildDir string
	// LogPath receives the container's combined stdout and stderr,
	// truncated at start. Not meant to be shared across concurrent runs.
	LogPath string
	// Command is the payload started after the dependency install step.
	Command []string
	// Name must not collide with a running container; uniqueness is the
	// caller's responsibility.
	Name string
	// ExposedPort, when nonzero, publishes InternalPort on the loopback
	// interface at this host port.
	ExposedPort int
	// CPULimit, when nonzero, applies a cpu-seconds ulimit.
	CPULimit int
	// Detach places the child in its own session so it survives the
	// caller.
	Detach bool
	// LockPath, when set, is opened and exclusively flocked before the
	// child starts; the descriptor is inherited by the child so the lock
	// releases exactly when the child exits.
	LockPath string
}

// ExitStatus reports how a container client process ended.
type ExitStatus struct {
	Code   int
	Signal string
}
