// Package dockercli implements engine.Engine by shelling out to the docker
// command-line client. Argument vectors are assembled explicitly; the only
// composed shell string is the in-container pipeline, which quotes its
// payload tokens.
package dockercli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"pkt.systems/pslog"

	"github.com/mmalewski/runbot/engine"
	"github.com/mmalewski/runbot/internal/builddir"
	"github.com/mmalewski/runbot/internal/lockfile"
	"github.com/mmalewski/runbot/internal/recipe"
)

// Config configures the docker CLI driver.
type Config struct {
	// Binary is the engine client, "docker" by default.
	Binary string
	// ImageTag is applied on build and expected on run.
	ImageTag string
	// PostgresSocket is the host socket directory mounted into every
	// container for database connectivity.
	PostgresSocket string
	// BuildTimeout bounds an image build; zero means no bound.
	BuildTimeout time.Duration
	// StopTimeout bounds a stop request; zero means no bound.
	StopTimeout time.Duration
}

// Runtime is the docker CLI engine.
type Runtime struct {
	cfg Config
}

// New constructs a Runtime, filling config defaults.
func New(cfg Config) *Runtime {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "docker"
	}
	if strings.TrimSpace(cfg.ImageTag) == "" {
		cfg.ImageTag = engine.DefaultImageTag
	}
	if strings.TrimSpace(cfg.PostgresSocket) == "" {
		cfg.PostgresSocket = engine.PostgresSocket
	}
	return &Runtime{cfg: cfg}
}

// Build copies the packaged recipe into <buildDir>/docker and builds the
// image from there, tagging it with the configured tag. Build errors
// propagate as external-command failures; there are no retries.
func (r *Runtime) Build(ctx context.Context, spec engine.BuildSpec) error {
	if strings.TrimSpace(spec.BuildDir) == "" {
		return errors.New("build directory is required")
	}
	tag := spec.Tag
	if tag == "" {
		tag = r.cfg.ImageTag
	}
	layout := builddir.New(spec.BuildDir)
	log := pslog.Ctx(ctx).With("image", tag, "context", layout.DockerDir)
	log.Info("docker build start")

	if err := recipe.Write(layout.DockerDir); err != nil {
		log.Warn("docker build failed", "err", err)
		return fmt.Errorf("write build recipe: %w", err)
	}
	if r.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.BuildTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, r.cfg.Binary, buildArgs(tag)...)
	cmd.Dir = layout.DockerDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn("docker build failed", "err", err)
		return commandError(cmd.Args, out, err)
	}
	log.Info("docker build ok")
	return nil
}

// Start launches a container run as a non-blocking child process and
// returns its handle immediately. The log file is opened write-truncate and
// stays open in the child for the lifetime of the run.
func (r *Runtime) Start(ctx context.Context, spec engine.RunSpec) (engine.Handle, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, errors.New("container name is required")
	}
	if strings.TrimSpace(spec.BuildDir) == "" {
		return nil, errors.New("build directory is required")
	}
	if strings.TrimSpace(spec.LogPath) == "" {
		return nil, errors.New("log path is required")
	}
	if len(spec.Command) == 0 {
		return nil, errors.New("payload command is required")
	}
	log := pslog.Ctx(ctx).With("container", spec.Name)
	pipeline := engine.Pipeline(spec.Command)
	log.Debug("docker run command", "pipeline", pipeline)

	logs, err := os.OpenFile(spec.LogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Warn("docker run failed", "err", err)
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// Plain Command, not CommandContext: the run is fire-and-forget and
	// must not die with the caller's context. Cancellation is an explicit
	// Stop against the container name.
	cmd := exec.Command(r.cfg.Binary, r.runArgs(spec)...)
	cmd.Stdout = logs
	cmd.Stderr = logs
	if spec.Detach {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	}

	var lock *os.File
	if spec.LockPath != "" {
		lock, err = lockfile.OpenLocked(spec.LockPath)
		if err != nil {
			_ = logs.Close()
			log.Warn("docker run failed", "err", err)
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		cmd.ExtraFiles = append(cmd.ExtraFiles, lock)
	}

	err = cmd.Start()
	// The child owns its copies now; dropping the parent's keeps the lock
	// tied to the child's lifetime.
	_ = logs.Close()
	if lock != nil {
		_ = lock.Close()
	}
	if err != nil {
		log.Warn("docker run failed", "err", err)
		return nil, fmt.Errorf("start %s: %w", r.cfg.Binary, err)
	}
	log.Info("docker container started", "pid", cmd.Process.Pid, "log", spec.LogPath, "detached", spec.Detach)
	return newProcHandle(cmd, spec.Name, log), nil
}

// Stop issues a stop for the named container with the engine's default
// grace period and blocks until the engine confirms. A container that does
// not exist or is not running yields an external-command error.
func (r *Runtime) Stop(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("container name is required")
	}
	log := pslog.Ctx(ctx).With("container", name)
	log.Info("docker stop start")
	started := time.Now()
	if r.cfg.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.StopTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, r.cfg.Binary, "stop", name)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		log.Warn("docker stop failed", "err", err, "stderr", strings.TrimSpace(stderr.String()))
		return commandError(cmd.Args, stderr.Bytes(), err)
	}
	log.Info("docker stop ok", "duration_ms", time.Since(started).Milliseconds())
	return nil
}

func buildArgs(tag string) []string {
	return []string{"build", "--tag", tag, "."}
}

func (r *Runtime) runArgs(spec engine.RunSpec) []string {
	args := []string{
		"run", "--rm",
		"--name", spec.Name,
		"--volume=" + r.cfg.PostgresSocket + ":" + engine.PostgresSocket,
		"--volume=" + spec.BuildDir + ":" + engine.MountPath,
	}
	if spec.ExposedPort > 0 {
		args = append(args, "-p", fmt.Sprintf("127.0.0.1:%d:%d", spec.ExposedPort, engine.InternalPort))
	}
	if spec.CPULimit > 0 {
		args = append(args, "--ulimit", fmt.Sprintf("cpu=%d", spec.CPULimit))
	}
	args = append(args, r.cfg.ImageTag, "/bin/bash", "-c", engine.Pipeline(spec.Command))
	return args
}
