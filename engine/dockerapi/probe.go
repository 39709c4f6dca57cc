// Package dockerapi probes container state over the engine API socket. The
// CLI driver covers build, run and stop; this client answers the cheaper
// "is it still up" question without forking a process per poll.
package dockerapi

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/client"
)

// Probe is a thin wrapper over the engine API client.
type Probe struct {
	cli *client.Client
}

// New connects to the engine API using the standard environment
// configuration (DOCKER_HOST and friends), negotiating the API version.
func New() (*Probe, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("connect to engine api: %w", err)
	}
	return &Probe{cli: cli}, nil
}

// Close releases the API connection.
func (p *Probe) Close() error {
	return p.cli.Close()
}

// State returns the engine's status string for the named container, or ""
// when the container does not exist.
func (p *Probe) State(ctx context.Context, name string) (string, error) {
	inspect, err := p.cli.ContainerInspect(ctx, name, client.ContainerInspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("inspect %s: %w", name, err)
	}
	return string(inspect.Container.State.Status), nil
}

// IsRunning reports whether the named container exists and is running.
func (p *Probe) IsRunning(ctx context.Context, name string) (bool, error) {
	status, err := p.State(ctx, name)
	if err != nil {
		return false, err
	}
	return status == "running", nil
}
