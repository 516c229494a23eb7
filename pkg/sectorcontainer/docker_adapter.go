package sectorcontainer

import (
	"context"
	"fmt"
	"sync"

	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	dockernetwork "github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	units "github.com/docker/go-units"
	"github.com/rs/zerolog/log"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

// DockerAdapter drives the Docker Engine API as the Sector Container
// runtime. Adapted from the devcontainer manager's create/start/inspect
// sequence: build config/host-config, create, start with cleanup on
// failure, inspect for observed state.
type DockerAdapter struct {
	docker *client.Client

	mu       sync.Mutex
	dockerID map[types.ContainerID]string
}

// NewDockerAdapter connects to the Docker daemon at host (e.g.
// "unix:///var/run/docker.sock").
func NewDockerAdapter(host string) (*DockerAdapter, error) {
	cli, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect docker client: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return &DockerAdapter{docker: cli, dockerID: make(map[types.ContainerID]string)}, nil
}

func (a *DockerAdapter) resolve(id types.ContainerID) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dockerID[id]
}

func (a *DockerAdapter) remember(id types.ContainerID, dockerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dockerID[id] = dockerID
}

func (a *DockerAdapter) forget(id types.ContainerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.dockerID, id)
}

func buildEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func buildPortSpecs(ports []types.PortMapping) (nat.PortSet, nat.PortMap, error) {
	exposed := make(nat.PortSet)
	bindings := make(nat.PortMap)
	for _, p := range ports {
		proto := p.Protocol
		if proto == "" {
			proto = "tcp"
		}
		containerPort, err := nat.NewPort(proto, fmt.Sprintf("%d", p.ContainerPort))
		if err != nil {
			return nil, nil, fmt.Errorf("parse container port: %w", err)
		}
		exposed[containerPort] = struct{}{}
		hostPort := ""
		if p.HostPort != 0 {
			hostPort = fmt.Sprintf("%d", p.HostPort)
		}
		bindings[containerPort] = append(bindings[containerPort], nat.PortBinding{
			HostIP:   "0.0.0.0",
			HostPort: hostPort,
		})
	}
	return exposed, bindings, nil
}

func buildMounts(volumes []types.VolumeBinding) []mount.Mount {
	out := make([]mount.Mount, 0, len(volumes))
	for _, v := range volumes {
		kind := mount.TypeBind
		if v.NamedVolume {
			kind = mount.TypeVolume
		}
		out = append(out, mount.Mount{
			Type:     kind,
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		})
	}
	return out
}

func buildRestartPolicy(p types.RestartPolicy) dockercontainer.RestartPolicy {
	switch p {
	case types.RestartOnFailure:
		return dockercontainer.RestartPolicy{Name: dockercontainer.RestartPolicyOnFailure}
	case types.RestartAlways:
		return dockercontainer.RestartPolicy{Name: dockercontainer.RestartPolicyAlways}
	case types.RestartUnlessStopped:
		return dockercontainer.RestartPolicy{Name: dockercontainer.RestartPolicyUnlessStopped}
	default:
		return dockercontainer.RestartPolicy{Name: dockercontainer.RestartPolicyDisabled}
	}
}

func buildHealthCheck(hc *types.HealthCheck) *dockercontainer.HealthConfig {
	if hc == nil {
		return nil
	}
	return &dockercontainer.HealthConfig{
		Test:        append([]string{"CMD-SHELL"}, hc.TestCmd...),
		Interval:    hc.Interval,
		Timeout:     hc.Timeout,
		StartPeriod: hc.StartPeriod,
		Retries:     hc.Retries,
	}
}

func buildResources(r types.ResourceCaps) dockercontainer.Resources {
	return dockercontainer.Resources{
		CPUShares: r.CPUShares,
		Memory:    r.MemoryMB * units.MiB,
		PidsLimit: &r.PidsLimit,
	}
}

// Create builds the docker container.Config/HostConfig from spec and
// calls ContainerCreate, mirroring the devcontainer manager's
// CreateDevContainer sequence.
func (a *DockerAdapter) Create(ctx context.Context, spec types.SectorContainerSpec) (types.ContainerID, error) {
	exposed, bindings, err := buildPortSpecs(spec.Ports)
	if err != nil {
		return types.ContainerID{}, err
	}

	cfg := &dockercontainer.Config{
		Image:        spec.Image,
		Env:          buildEnv(spec.Env),
		ExposedPorts: exposed,
		Healthcheck:  buildHealthCheck(spec.HealthCheck),
	}

	hostCfg := &dockercontainer.HostConfig{
		Mounts:         buildMounts(spec.Volumes),
		PortBindings:   bindings,
		RestartPolicy:  buildRestartPolicy(spec.RestartPolicy),
		Resources:      buildResources(spec.Resources),
		ReadonlyRootfs: spec.Security.ReadOnlyRootfs,
		CapDrop:        spec.Security.CapDrop,
		CapAdd:         spec.Security.CapAdd,
		SecurityOpt:    buildSecurityOpt(spec.Security),
		DNS:            spec.Network.DNS,
		ExtraHosts:     buildExtraHosts(spec.Network.ExtraHosts),
	}

	netCfg := &dockernetwork.NetworkingConfig{}

	resp, err := a.docker.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, "")
	if err != nil {
		return types.ContainerID{}, fmt.Errorf("create container: %w: %v", toserr.ErrContainerRuntime, err)
	}

	id, err := parseContainerID(resp.ID)
	if err != nil {
		// The container exists in Docker even though we can't parse its id
		// into our UUID space; remove it rather than leak it.
		_ = a.docker.ContainerRemove(ctx, resp.ID, dockercontainer.RemoveOptions{Force: true})
		return types.ContainerID{}, err
	}
	a.remember(id, resp.ID)
	return id, nil
}

func buildSecurityOpt(sec types.SecurityProfile) []string {
	var opts []string
	if sec.NoNewPrivileges {
		opts = append(opts, "no-new-privileges")
	}
	if sec.SeccompProfile != "" {
		opts = append(opts, "seccomp="+sec.SeccompProfile)
	}
	if sec.ApparmorProfile != "" {
		opts = append(opts, "apparmor="+sec.ApparmorProfile)
	}
	opts = append(opts, sec.SELinuxOptions...)
	return opts
}

func buildExtraHosts(hosts map[string]string) []string {
	out := make([]string, 0, len(hosts))
	for host, ip := range hosts {
		out = append(out, fmt.Sprintf("%s:%s", host, ip))
	}
	return out
}

// Start calls ContainerStart, removing the container on failure rather
// than leaving it in Created forever.
func (a *DockerAdapter) Start(ctx context.Context, id types.ContainerID) error {
	dockerID := a.resolve(id)
	if err := a.docker.ContainerStart(ctx, dockerID, dockercontainer.StartOptions{}); err != nil {
		log.Error().Err(err).Str("container", dockerID).Msg("container start failed, removing")
		_ = a.docker.ContainerRemove(ctx, dockerID, dockercontainer.RemoveOptions{Force: true})
		return fmt.Errorf("start container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return nil
}

func (a *DockerAdapter) Stop(ctx context.Context, id types.ContainerID) error {
	dockerID := a.resolve(id)
	if err := a.docker.ContainerStop(ctx, dockerID, dockercontainer.StopOptions{}); err != nil {
		return fmt.Errorf("stop container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return nil
}

func (a *DockerAdapter) Pause(ctx context.Context, id types.ContainerID) error {
	if err := a.docker.ContainerPause(ctx, a.resolve(id)); err != nil {
		return fmt.Errorf("pause container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return nil
}

func (a *DockerAdapter) Unpause(ctx context.Context, id types.ContainerID) error {
	if err := a.docker.ContainerUnpause(ctx, a.resolve(id)); err != nil {
		return fmt.Errorf("unpause container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return nil
}

func (a *DockerAdapter) Remove(ctx context.Context, id types.ContainerID) error {
	if err := a.docker.ContainerRemove(ctx, a.resolve(id), dockercontainer.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("remove container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	a.forget(id)
	return nil
}

func (a *DockerAdapter) Inspect(ctx context.Context, id types.ContainerID) (RuntimeState, error) {
	info, err := a.docker.ContainerInspect(ctx, a.resolve(id))
	if err != nil {
		return RuntimeState{}, fmt.Errorf("inspect container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	state := RuntimeState{Running: info.State != nil && info.State.Running}
	if info.NetworkSettings != nil {
		state.IPAddress = info.NetworkSettings.IPAddress
	}
	return state, nil
}

func (a *DockerAdapter) Snapshot(ctx context.Context, id types.ContainerID, name string) (string, error) {
	resp, err := a.docker.ContainerCommit(ctx, a.resolve(id), dockercontainer.CommitOptions{Reference: name})
	if err != nil {
		return "", fmt.Errorf("snapshot container: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return resp.ID, nil
}

// CreateNetwork creates one bridge network per sector, adapted from the
// hydra manager's bridge-index allocation: rather than a shared daemon
// bridge, every sector gets its own isolated 172.x.0.0/16 subnet so
// sectors cannot see each other's traffic.
func (a *DockerAdapter) CreateNetwork(ctx context.Context, subnet string, labels map[string]string) (string, error) {
	resp, err := a.docker.NetworkCreate(ctx, networkName(labels), dockernetwork.CreateOptions{
		Driver: "bridge",
		IPAM: &dockernetwork.IPAM{
			Driver: "default",
			Config: []dockernetwork.IPAMConfig{{Subnet: subnet}},
		},
		Labels: labels,
	})
	if err != nil {
		return "", fmt.Errorf("create network: %w: %v", toserr.ErrContainerRuntime, err)
	}
	return resp.ID, nil
}

func networkName(labels map[string]string) string {
	if name, ok := labels["tos.sector.network"]; ok {
		return name
	}
	return "tos-sector-net"
}
