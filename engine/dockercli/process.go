package dockercli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"pkt.systems/pslog"

	"github.com/mmalewski/runbot/engine"
)

// procHandle tracks the engine client process of one container run. The
// process exits when the run ends, so waiting on the handle replaces the
// lock-polling loop for callers that keep the handle around.
type procHandle struct {
	cmd     *exec.Cmd
	name    string
	log     pslog.Logger
	started time.Time

	once   sync.Once
	done   chan struct{}
	status engine.ExitStatus
	err    error
}

func newProcHandle(cmd *exec.Cmd, name string, log pslog.Logger) *procHandle {
	return &procHandle{
		cmd:     cmd,
		name:    name,
		log:     log,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Pid returns the spawned process's identifier.
func (h *procHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Wait blocks until the engine client process exits or ctx is done. The
// reaper is started on first call; later calls observe the same result.
func (h *procHandle) Wait(ctx context.Context) (engine.ExitStatus, error) {
	h.once.Do(func() {
		go h.reap()
	})
	select {
	case <-h.done:
		return h.status, h.err
	case <-ctx.Done():
		return engine.ExitStatus{}, ctx.Err()
	}
}

// Signal delivers sig to the engine client process.
func (h *procHandle) Signal(sig os.Signal) error {
	if h.cmd.Process == nil {
		return errors.New("process not started")
	}
	return h.cmd.Process.Signal(sig)
}

func (h *procHandle) reap() {
	defer close(h.done)
	err := h.cmd.Wait()
	status := engine.ExitStatus{}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			h.err = err
			h.log.Warn("docker run wait failed", "err", err)
			return
		}
		status.Code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status.Signal = ws.Signal().String()
		}
	}
	h.status = status
	fields := []any{
		"exit_code", status.Code,
		"duration_ms", time.Since(h.started).Milliseconds(),
	}
	if status.Signal != "" {
		fields = append(fields, "signal", status.Signal)
	}
	h.log.Info("docker container finished", fields...)
}
