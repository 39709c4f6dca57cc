// Package selftest drives the container engine end to end against a real
// build directory: a stop of a missing container, a bounded test run, a
// detached run observed through the lock file, and a long-running run with a
// published port.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/user"
	"time"

	"pkt.systems/pslog"

	"github.com/mmalewski/runbot/engine"
	"github.com/mmalewski/runbot/internal/builddir"
	"github.com/mmalewski/runbot/internal/lockfile"
	"github.com/mmalewski/runbot/internal/testdb"
)

// Probe answers whether a named container is currently running. Optional;
// without one the driver relies on the lock file and process handle alone.
type Probe interface {
	IsRunning(ctx context.Context, name string) (bool, error)
}

// Config parameterizes a self-test run.
type Config struct {
	// BuildDir is an odoo source checkout; odoo-bin must sit at its root.
	BuildDir string
	// OdooVersion is informational and only logged.
	OdooVersion string
	// Port is published on loopback during the running scenario.
	Port int
	// DBName is the database the in-container server connects to.
	DBName string
	// DBUser is the postgres role; defaults to the current OS user.
	DBUser string
	// PostgresSocket, when set, lets the driver create DBName up front.
	PostgresSocket string

	// KillAfter is the grace before stopping the first run (default 30s).
	KillAfter time.Duration
	// WaitTimeout bounds waiting for the detached run (default 10m).
	WaitTimeout time.Duration
	// PortWait bounds waiting for the published port (default 60s).
	PortWait time.Duration
}

// Driver runs the self-test scenarios in order, stopping at the first
// failure.
type Driver struct {
	eng   engine.Engine
	probe Probe
	cfg   Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	dial  func(ctx context.Context, addr string) error
}

// New builds a Driver, filling config defaults. probe may be nil.
func New(eng engine.Engine, probe Probe, cfg Config) (*Driver, error) {
	if cfg.BuildDir == "" {
		return nil, errors.New("build directory is required")
	}
	if cfg.DBName == "" {
		return nil, errors.New("database name is required")
	}
	if cfg.DBUser == "" {
		u, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("resolve current user: %w", err)
		}
		cfg.DBUser = u.Username
	}
	if cfg.KillAfter <= 0 {
		cfg.KillAfter = 30 * time.Second
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Minute
	}
	if cfg.PortWait <= 0 {
		cfg.PortWait = 60 * time.Second
	}
	return &Driver{
		eng:   eng,
		probe: probe,
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepCtx,
		dial:  dialOnce,
	}, nil
}

// Run executes the scenario sequence.
func (d *Driver) Run(ctx context.Context) error {
	log := pslog.Ctx(ctx)
	log.Info("container self-test start", "build_dir", d.cfg.BuildDir, "odoo_version", d.cfg.OdooVersion)

	layout := builddir.New(d.cfg.BuildDir)
	if err := layout.Ensure(); err != nil {
		return fmt.Errorf("prepare build directory: %w", err)
	}
	if d.cfg.PostgresSocket != "" {
		if err := testdb.Ensure(ctx, d.cfg.PostgresSocket, d.cfg.DBName); err != nil {
			return fmt.Errorf("provision test database: %w", err)
		}
	}

	if err := d.stopMissing(ctx); err != nil {
		return err
	}
	if err := d.boundedRun(ctx, layout); err != nil {
		return err
	}
	if err := d.detachedRun(ctx, layout); err != nil {
		return err
	}
	if err := d.runningRun(ctx, layout); err != nil {
		return err
	}
	log.Info("container self-test ok")
	return nil
}

// stopMissing verifies that stopping an absent container surfaces an error.
func (d *Driver) stopMissing(ctx context.Context) error {
	log := pslog.Ctx(ctx)
	log.Info("self-test stop missing container")
	err := d.eng.Stop(ctx, "xyxyxyxyxy")
	if err == nil {
		return errors.New("stopping a missing container unexpectedly succeeded")
	}
	log.Warn("stop of missing container failed as expected", "err", err)
	return nil
}

// boundedRun starts a full test run and stops it after the kill grace.
func (d *Driver) boundedRun(ctx context.Context, layout builddir.Layout) error {
	log := pslog.Ctx(ctx)
	name := d.containerName()
	log.Info("self-test bounded run", "container", name)
	h, err := d.eng.Start(ctx, engine.RunSpec{
		BuildDir: layout.Root,
		LogPath:  layout.LogPath("logs-partial.txt"),
		Command:  d.testCommand(),
		Name:     name,
	})
	if err != nil {
		return fmt.Errorf("start bounded run: %w", err)
	}
	log.Info("waiting before stopping the build", "pid", h.Pid(), "grace", d.cfg.KillAfter.String())
	if err := d.sleep(ctx, d.cfg.KillAfter); err != nil {
		return err
	}
	if err := d.eng.Stop(ctx, name); err != nil {
		return fmt.Errorf("stop bounded run: %w", err)
	}
	if err := d.sleep(ctx, 3*time.Second); err != nil {
		return err
	}
	return d.checkGone(ctx, name)
}

// detachedRun starts a detached run holding the lock file and waits for it
// through the process handle, cross-checking the lock probe on both sides.
func (d *Driver) detachedRun(ctx context.Context, layout builddir.Layout) error {
	log := pslog.Ctx(ctx)
	name := d.containerName()
	log.Info("self-test detached run", "container", name, "lock", layout.LockPath)
	h, err := d.eng.Start(ctx, engine.RunSpec{
		BuildDir: layout.Root,
		LogPath:  layout.LogPath("logs-full-test.txt"),
		Command:  d.testCommand(),
		Name:     name,
		Detach:   true,
		LockPath: layout.LockPath,
	})
	if err != nil {
		return fmt.Errorf("start detached run: %w", err)
	}
	if err := d.sleep(ctx, time.Second); err != nil {
		return err
	}
	locked, err := lockfile.IsLocked(layout.LockPath)
	if err != nil {
		return fmt.Errorf("probe run lock: %w", err)
	}
	if !locked {
		return errors.New("run lock not held while container runs")
	}
	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.WaitTimeout)
	defer cancel()
	status, err := h.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("wait for detached run: %w", err)
	}
	log.Info("detached run finished", "exit_code", status.Code)
	locked, err = lockfile.IsLocked(layout.LockPath)
	if err != nil {
		return fmt.Errorf("probe run lock: %w", err)
	}
	if locked {
		return errors.New("run lock still held after container exit")
	}
	return nil
}

// runningRun starts a server run with a published port and a CPU limit,
// waits for the port, then stops the container. The engine publishes the
// port before the server listens, so an unreachable port is a warning, not
// a failure.
func (d *Driver) runningRun(ctx context.Context, layout builddir.Layout) error {
	log := pslog.Ctx(ctx)
	name := d.containerName()
	log.Info("self-test running run", "container", name, "port", d.cfg.Port)
	_, err := d.eng.Start(ctx, engine.RunSpec{
		BuildDir:    layout.Root,
		LogPath:     layout.LogPath("logs-running.txt"),
		Command:     d.runningCommand(),
		Name:        name,
		ExposedPort: d.cfg.Port,
		CPULimit:    300,
	})
	if err != nil {
		return fmt.Errorf("start running run: %w", err)
	}
	if d.cfg.Port > 0 {
		if err := d.waitForPort(ctx); err != nil {
			log.Warn("published port never accepted a connection", "port", d.cfg.Port, "err", err)
		} else {
			log.Info("published port accepting connections", "port", d.cfg.Port)
		}
	}
	if err := d.eng.Stop(ctx, name); err != nil {
		return fmt.Errorf("stop running run: %w", err)
	}
	return d.checkGone(ctx, name)
}

// checkGone asks the probe, when present, whether the container is still up
// after a stop.
func (d *Driver) checkGone(ctx context.Context, name string) error {
	if d.probe == nil {
		return nil
	}
	running, err := d.probe.IsRunning(ctx, name)
	if err != nil {
		return fmt.Errorf("probe %s after stop: %w", name, err)
	}
	if running {
		return fmt.Errorf("container %s still running after stop", name)
	}
	return nil
}

func (d *Driver) waitForPort(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", d.cfg.Port)
	deadline := d.now().Add(d.cfg.PortWait)
	var lastErr error
	for d.now().Before(deadline) {
		if lastErr = d.dial(ctx, addr); lastErr == nil {
			return nil
		}
		if err := d.sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("timeout")
	}
	return lastErr
}

// containerName derives a run name from the current microsecond, matching
// the engine's name uniqueness burden on the caller.
func (d *Driver) containerName() string {
	return fmt.Sprintf("odoo-container-test-%d", d.now().Nanosecond()/1000)
}

// testCommand is the full test invocation: install web, run its tests, then
// exit.
func (d *Driver) testCommand() []string {
	return []string{
		"/data/build/odoo-bin",
		"-d", d.cfg.DBName,
		"--addons-path=/data/build/addons",
		"--data-dir", "/data/build/datadir",
		"-r", d.cfg.DBUser,
		"-i", "web",
		"--test-enable",
		"--stop-after-init",
		"--max-cron-threads=0",
	}
}

// runningCommand keeps the server up for the port scenario.
func (d *Driver) runningCommand() []string {
	return []string{
		"/data/build/odoo-bin",
		"-d", d.cfg.DBName,
		"--db-filter", d.cfg.DBName + ".*$",
		"--addons-path=/data/build/addons",
		"-r", d.cfg.DBUser,
		"-i", "web",
		"--max-cron-threads=0",
		"--data-dir", "/data/build/datadir",
	}
}

func sleepCtx(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func dialOnce(ctx context.Context, addr string) error {
	var dialer net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}
