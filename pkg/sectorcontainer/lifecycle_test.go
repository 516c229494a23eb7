package sectorcontainer

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/types"
)

// fakeRuntime is an in-memory RuntimeAdapter double, exercising the
// Manager's state machine without a real container engine.
type fakeRuntime struct {
	mu      sync.Mutex
	running map[types.ContainerID]bool
	fail    map[types.ContainerID]bool
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{running: make(map[types.ContainerID]bool), fail: make(map[types.ContainerID]bool)}
}

func (f *fakeRuntime) Create(ctx context.Context, spec types.SectorContainerSpec) (types.ContainerID, error) {
	return uuid.New(), nil
}

func (f *fakeRuntime) Start(ctx context.Context, id types.ContainerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[id] = true
	return nil
}

func (f *fakeRuntime) Stop(ctx context.Context, id types.ContainerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[id] = false
	return nil
}

func (f *fakeRuntime) Pause(ctx context.Context, id types.ContainerID) error   { return nil }
func (f *fakeRuntime) Unpause(ctx context.Context, id types.ContainerID) error { return nil }

func (f *fakeRuntime) Remove(ctx context.Context, id types.ContainerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, id)
	return nil
}

func (f *fakeRuntime) Inspect(ctx context.Context, id types.ContainerID) (RuntimeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return RuntimeState{Running: f.running[id], IPAddress: "172.30.0.2"}, nil
}

func (f *fakeRuntime) Snapshot(ctx context.Context, id types.ContainerID, name string) (string, error) {
	return "snapshot-" + name, nil
}

func (f *fakeRuntime) CreateNetwork(ctx context.Context, subnet string, labels map[string]string) (string, error) {
	return "net-" + subnet, nil
}

// TestSectorContainerLifecycle exercises S6: create with auto_start and a
// container port -> Running with a host port in [30000,39999]; stop ->
// Stopped; start again -> Running; remove(force) -> entry gone.
func TestSectorContainerLifecycle(t *testing.T) {
	runtime := newFakeRuntime()
	mgr := NewManager(runtime, 30000, 39999)
	sector := types.SectorID(uuid.New())
	ctx := context.Background()

	spec := types.SectorContainerSpec{
		Image:     "tos/sector-base:latest",
		AutoStart: true,
		Ports:     []types.PortMapping{{ContainerPort: 8080, Protocol: "tcp"}},
	}

	container, err := mgr.CreateSector(ctx, sector, spec)
	require.NoError(t, err)
	require.Equal(t, types.StatusRunning, container.Status)
	hostPort := container.HostPorts[8080]
	require.GreaterOrEqual(t, hostPort, 30000)
	require.LessOrEqual(t, hostPort, 39999)
	require.NotEmpty(t, container.Spec.Security.CapAdd)

	require.NoError(t, mgr.StopSector(ctx, sector))
	got, ok := mgr.Get(sector)
	require.True(t, ok)
	require.Equal(t, types.StatusStopped, got.Status)

	require.NoError(t, mgr.StartSector(ctx, sector))
	got, ok = mgr.Get(sector)
	require.True(t, ok)
	require.Equal(t, types.StatusRunning, got.Status)

	require.NoError(t, mgr.RemoveSector(ctx, sector, true))
	_, ok = mgr.Get(sector)
	require.False(t, ok)
}

func TestCreateSectorRejectsDuplicateSector(t *testing.T) {
	mgr := NewManager(newFakeRuntime(), 30000, 39999)
	sector := types.SectorID(uuid.New())
	spec := types.SectorContainerSpec{Image: "tos/sector-base:latest"}

	_, err := mgr.CreateSector(context.Background(), sector, spec)
	require.NoError(t, err)

	_, err = mgr.CreateSector(context.Background(), sector, spec)
	require.Error(t, err)
}

func TestPauseUnpauseCycle(t *testing.T) {
	mgr := NewManager(newFakeRuntime(), 30000, 39999)
	sector := types.SectorID(uuid.New())
	ctx := context.Background()

	_, err := mgr.CreateSector(ctx, sector, types.SectorContainerSpec{Image: "tos/sector-base:latest", AutoStart: true})
	require.NoError(t, err)

	require.NoError(t, mgr.PauseSector(ctx, sector))
	got, _ := mgr.Get(sector)
	require.Equal(t, types.StatusPaused, got.Status)

	require.NoError(t, mgr.UnpauseSector(ctx, sector))
	got, _ = mgr.Get(sector)
	require.Equal(t, types.StatusRunning, got.Status)
}

func TestStopNonRunningContainerIsRejected(t *testing.T) {
	mgr := NewManager(newFakeRuntime(), 30000, 39999)
	sector := types.SectorID(uuid.New())
	ctx := context.Background()

	_, err := mgr.CreateSector(ctx, sector, types.SectorContainerSpec{Image: "tos/sector-base:latest"})
	require.NoError(t, err)

	err = mgr.StopSector(ctx, sector)
	require.Error(t, err)
}

func TestPortsAreReleasedOnRemove(t *testing.T) {
	mgr := NewManager(newFakeRuntime(), 30000, 30000)
	ctx := context.Background()

	s1 := types.SectorID(uuid.New())
	spec := types.SectorContainerSpec{Image: "tos/sector-base:latest", AutoStart: true, Ports: []types.PortMapping{{ContainerPort: 80}}}
	_, err := mgr.CreateSector(ctx, s1, spec)
	require.NoError(t, err)

	s2 := types.SectorID(uuid.New())
	_, err = mgr.CreateSector(ctx, s2, spec)
	require.Error(t, err, "single-port range should be exhausted")

	require.NoError(t, mgr.RemoveSector(ctx, s1, true))

	_, err = mgr.CreateSector(ctx, s2, spec)
	require.NoError(t, err, "port should be released back to the pool")
}
