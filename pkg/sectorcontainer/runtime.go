// Package sectorcontainer provides per-sector isolation with
// deterministic start/stop/snapshot semantics, using the host container
// runtime as an adapter.
package sectorcontainer

import (
	"context"

	"github.com/tos-desktop/tos/pkg/types"
)

// RuntimeAdapter is the narrow contract the Sector Container Lifecycle
// drives; the default implementation wraps github.com/docker/docker's
// client, but tests substitute a fake satisfying the same contract.
type RuntimeAdapter interface {
	Create(ctx context.Context, spec types.SectorContainerSpec) (types.ContainerID, error)
	Start(ctx context.Context, id types.ContainerID) error
	Stop(ctx context.Context, id types.ContainerID) error
	Pause(ctx context.Context, id types.ContainerID) error
	Unpause(ctx context.Context, id types.ContainerID) error
	Remove(ctx context.Context, id types.ContainerID) error
	Inspect(ctx context.Context, id types.ContainerID) (RuntimeState, error)
	Snapshot(ctx context.Context, id types.ContainerID, name string) (string, error)
	CreateNetwork(ctx context.Context, subnet string, labels map[string]string) (string, error)
}

// RuntimeState is what the adapter observes about a running container.
type RuntimeState struct {
	Running   bool
	IPAddress string
}
