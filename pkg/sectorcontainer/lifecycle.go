package sectorcontainer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

const (
	defaultPortLow  = 30000
	defaultPortHigh = 39999
)

// Manager owns the per-sector container state and drives it through the
// runtime adapter, the same responsibility the hydra manager holds for
// devcontainers: one entry per scope, id-keyed, mutex-guarded.
type Manager struct {
	mu         sync.Mutex
	containers map[types.ContainerID]*types.SectorContainer
	bySector   map[types.SectorID]types.ContainerID

	runtime RuntimeAdapter
	subnets *subnetAllocator
	ports   *portAllocator
	now     func() time.Time
}

// NewManager builds a Manager bound to the given runtime adapter and
// dynamic port range.
func NewManager(runtime RuntimeAdapter, portLow, portHigh int) *Manager {
	if portLow == 0 && portHigh == 0 {
		portLow, portHigh = defaultPortLow, defaultPortHigh
	}
	return &Manager{
		containers: make(map[types.ContainerID]*types.SectorContainer),
		bySector:   make(map[types.SectorID]types.ContainerID),
		runtime:    runtime,
		subnets:    newSubnetAllocator(),
		ports:      newPortAllocator(portLow, portHigh),
		now:        time.Now,
	}
}

// Get returns a copy of the observed container state for a sector.
func (m *Manager) Get(sector types.SectorID) (*types.SectorContainer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bySector[sector]
	if !ok {
		return nil, false
	}
	c := *m.containers[id]
	return &c, true
}

// CreateSector provisions a container for a sector: a dedicated bridge
// network and subnet, dynamic host ports for every container port the
// spec exposes, and — if spec.AutoStart is set — starts it immediately.
// A failure before the container is created returns the error and
// records no entry (allocated host ports are released); a failed
// auto-start leaves the recorded container in Error.
func (m *Manager) CreateSector(ctx context.Context, sector types.SectorID, spec types.SectorContainerSpec) (*types.SectorContainer, error) {
	m.mu.Lock()
	if _, exists := m.bySector[sector]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("sectorcontainer: sector already has a container: %w", toserr.ErrInvalidState)
	}
	m.mu.Unlock()

	subnet := m.subnets.allocate()
	labels := map[string]string{"tos.sector": sector.String(), "tos.sector.network": "tos-sector-" + sector.String()}
	if spec.Network.Labels != nil {
		for k, v := range spec.Network.Labels {
			labels[k] = v
		}
	}
	spec.Network.Subnet = subnet

	if _, err := m.runtime.CreateNetwork(ctx, subnet, labels); err != nil {
		return nil, err
	}

	hostPorts := make(map[int]int, len(spec.Ports))
	for i, p := range spec.Ports {
		hostPort := p.HostPort
		if hostPort == 0 {
			allocated, err := m.ports.allocate()
			if err != nil {
				m.releasePorts(hostPorts)
				return nil, err
			}
			hostPort = allocated
			spec.Ports[i].HostPort = hostPort
		}
		hostPorts[p.ContainerPort] = hostPort
	}

	if len(spec.Security.CapAdd) == 0 && len(spec.Security.CapDrop) == 0 {
		spec.Security = types.DefaultSecurityProfile()
	}

	id, err := m.runtime.Create(ctx, spec)
	if err != nil {
		m.releasePorts(hostPorts)
		return nil, err
	}

	container := &types.SectorContainer{
		ContainerID: id,
		SectorID:    sector,
		Spec:        spec,
		Status:      types.StatusCreated,
		HostPorts:   hostPorts,
	}

	m.mu.Lock()
	m.containers[id] = container
	m.bySector[sector] = id
	m.mu.Unlock()

	if spec.AutoStart {
		if err := m.StartSector(ctx, sector); err != nil {
			return nil, err
		}
		return m.mustGet(sector), nil
	}
	return m.mustGet(sector), nil
}

func (m *Manager) releasePorts(hostPorts map[int]int) {
	m.ports.releaseAll(hostPorts)
}

func (m *Manager) mustGet(sector types.SectorID) *types.SectorContainer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *m.containers[m.bySector[sector]]
	return &c
}

// StartSector transitions Created/Stopped/Error -> Starting -> Running,
// falling back to Error on adapter failure.
func (m *Manager) StartSector(ctx context.Context, sector types.SectorID) error {
	container, err := m.transitionLocked(sector, types.StatusStarting, func(c *types.SectorContainer) bool {
		return c.CanStart()
	})
	if err != nil {
		return err
	}

	if err := m.runtime.Start(ctx, container.ContainerID); err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}

	state, err := m.runtime.Inspect(ctx, container.ContainerID)
	if err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}

	m.mu.Lock()
	container = m.containers[container.ContainerID]
	container.Status = types.StatusRunning
	container.IPAddress = state.IPAddress
	started := m.now()
	container.StartedAt = &started
	container.EndedAt = nil
	m.mu.Unlock()
	return nil
}

// StopSector transitions Running/Paused -> Stopping -> Stopped.
func (m *Manager) StopSector(ctx context.Context, sector types.SectorID) error {
	container, err := m.transitionLocked(sector, types.StatusStopping, func(c *types.SectorContainer) bool {
		return c.CanStop()
	})
	if err != nil {
		return err
	}

	if err := m.runtime.Stop(ctx, container.ContainerID); err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}

	m.mu.Lock()
	container = m.containers[container.ContainerID]
	container.Status = types.StatusStopped
	ended := m.now()
	container.EndedAt = &ended
	m.mu.Unlock()
	return nil
}

// PauseSector freezes a running container's processes without stopping
// it.
func (m *Manager) PauseSector(ctx context.Context, sector types.SectorID) error {
	m.mu.Lock()
	id, ok := m.bySector[sector]
	if !ok {
		m.mu.Unlock()
		return toserr.ErrNotFound
	}
	container := m.containers[id]
	if container.Status != types.StatusRunning {
		m.mu.Unlock()
		return toserr.ErrInvalidState
	}
	m.mu.Unlock()

	if err := m.runtime.Pause(ctx, id); err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}
	m.setStatus(sector, types.StatusPaused)
	return nil
}

// UnpauseSector resumes a paused container.
func (m *Manager) UnpauseSector(ctx context.Context, sector types.SectorID) error {
	m.mu.Lock()
	id, ok := m.bySector[sector]
	if !ok {
		m.mu.Unlock()
		return toserr.ErrNotFound
	}
	container := m.containers[id]
	if container.Status != types.StatusPaused {
		m.mu.Unlock()
		return toserr.ErrInvalidState
	}
	m.mu.Unlock()

	if err := m.runtime.Unpause(ctx, id); err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}
	m.setStatus(sector, types.StatusRunning)
	return nil
}

// RemoveSector transitions -> Removing -> Removed, releasing the
// container's host ports back to the pool. force removes a running
// container without first stopping it; the data directory lifecycle
// itself is the caller's concern (the container's bind-mounted volumes).
func (m *Manager) RemoveSector(ctx context.Context, sector types.SectorID, force bool) error {
	m.mu.Lock()
	id, ok := m.bySector[sector]
	if !ok {
		m.mu.Unlock()
		return toserr.ErrNotFound
	}
	container := m.containers[id]
	if !force && container.IsActive() {
		m.mu.Unlock()
		return fmt.Errorf("sectorcontainer: container is active, stop first or force remove: %w", toserr.ErrInvalidState)
	}
	container.Status = types.StatusRemoving
	hostPorts := container.HostPorts
	m.mu.Unlock()

	if err := m.runtime.Remove(ctx, id); err != nil {
		m.setStatus(sector, types.StatusError)
		return err
	}

	m.ports.releaseAll(hostPorts)

	m.mu.Lock()
	delete(m.containers, id)
	delete(m.bySector, sector)
	m.mu.Unlock()
	return nil
}

// SnapshotSector commits the running container's filesystem as a named
// image, recording the snapshot id for later restoration.
func (m *Manager) SnapshotSector(ctx context.Context, sector types.SectorID, name string) (string, error) {
	m.mu.Lock()
	id, ok := m.bySector[sector]
	if !ok {
		m.mu.Unlock()
		return "", toserr.ErrNotFound
	}
	m.mu.Unlock()

	snapshotID, err := m.runtime.Snapshot(ctx, id, name)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.containers[id].SnapshotID = snapshotID
	m.mu.Unlock()
	return snapshotID, nil
}

// transitionLocked validates the precondition under lock, marks the
// container with the transitional status, and returns a snapshot of it
// for the caller to act on without the lock held.
func (m *Manager) transitionLocked(sector types.SectorID, transitional types.ContainerStatus, allowed func(*types.SectorContainer) bool) (*types.SectorContainer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySector[sector]
	if !ok {
		return nil, toserr.ErrNotFound
	}
	container := m.containers[id]
	if !allowed(container) {
		return nil, fmt.Errorf("sectorcontainer: cannot transition from %s: %w", container.Status, toserr.ErrInvalidState)
	}
	container.Status = transitional
	snapshot := *container
	return &snapshot, nil
}

func (m *Manager) setStatus(sector types.SectorID, status types.ContainerStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bySector[sector]
	if !ok {
		return
	}
	m.containers[id].Status = status
	if status == types.StatusError {
		log.Error().Stringer("sector", sector).Msg("sector container entered error state")
	}
}
