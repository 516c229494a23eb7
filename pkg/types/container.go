package types

import "time"

// RestartPolicy mirrors the restart policy of a Sector Container.
type RestartPolicy int

const (
	RestartNo RestartPolicy = iota
	RestartOnFailure
	RestartAlways
	RestartUnlessStopped
)

// HealthCheck describes a container health probe.
type HealthCheck struct {
	TestCmd      []string
	Interval     time.Duration
	Timeout      time.Duration
	StartPeriod  time.Duration
	Retries      int
}

// SecurityProfile carries the capability/namespace confinement for a
// Sector Container.
type SecurityProfile struct {
	ReadOnlyRootfs  bool
	NoNewPrivileges bool
	CapDrop         []string
	CapAdd          []string
	SeccompProfile  string
	ApparmorProfile string
	SELinuxOptions  []string
}

// DefaultCapAdd is the capability set added back after dropping all
// capabilities, per the default security profile.
var DefaultCapAdd = []string{
	"CHOWN", "DAC_OVERRIDE", "FSETID", "FOWNER", "MKNOD", "NET_RAW",
	"SETGID", "SETUID", "SETFCAP", "SETPCAP", "NET_BIND_SERVICE",
	"SYS_CHROOT", "KILL", "AUDIT_WRITE",
}

// DefaultSecurityProfile drops every capability then adds back DefaultCapAdd.
func DefaultSecurityProfile() SecurityProfile {
	return SecurityProfile{
		NoNewPrivileges: true,
		CapDrop:         []string{"ALL"},
		CapAdd:          append([]string(nil), DefaultCapAdd...),
	}
}

// VolumeBinding maps a host path or named volume to a container path.
type VolumeBinding struct {
	Source     string
	Target     string
	ReadOnly   bool
	NamedVolume bool
}

// PortMapping maps a host port (0 requests dynamic allocation) to a
// container port.
type PortMapping struct {
	HostPort      int
	ContainerPort int
	Protocol      string // "tcp" | "udp"
}

// ResourceCaps bounds cpu, memory, pid, and IO for a container.
type ResourceCaps struct {
	CPUShares  int64
	MemoryMB   int64
	PidsLimit  int64
	IOWeight   int64
}

// NetworkMode selects the per-sector network topology.
type NetworkMode int

const (
	NetworkBridge NetworkMode = iota
	NetworkHost
	NetworkNone
)

// NetworkConfig describes the per-sector network.
type NetworkConfig struct {
	Mode       NetworkMode
	Subnet     string // assigned 172.x.0.0/16 when created on-demand
	DNS        []string
	ExtraHosts map[string]string
	Labels     map[string]string
}

// SectorContainerSpec is the desired state of a Sector Container.
type SectorContainerSpec struct {
	Image         string
	Env           map[string]string
	Volumes       []VolumeBinding
	Ports         []PortMapping
	Resources     ResourceCaps
	Security      SecurityProfile
	RestartPolicy RestartPolicy
	HealthCheck   *HealthCheck
	Network       NetworkConfig
	AutoStart     bool
}

// ContainerStatus is the observed lifecycle status of a Sector Container.
type ContainerStatus int

const (
	StatusCreating ContainerStatus = iota
	StatusCreated
	StatusStarting
	StatusRunning
	StatusPaused
	StatusStopping
	StatusStopped
	StatusRemoving
	StatusRemoved
	StatusError
)

func (s ContainerStatus) String() string {
	switch s {
	case StatusCreating:
		return "Creating"
	case StatusCreated:
		return "Created"
	case StatusStarting:
		return "Starting"
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopping:
		return "Stopping"
	case StatusStopped:
		return "Stopped"
	case StatusRemoving:
		return "Removing"
	case StatusRemoved:
		return "Removed"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// SectorContainer is the runtime-observed state of a per-sector container.
type SectorContainer struct {
	ContainerID ContainerID
	SectorID    SectorID
	Spec        SectorContainerSpec
	Status      ContainerStatus
	StartedAt   *time.Time
	EndedAt     *time.Time
	IPAddress   string
	HostPorts   map[int]int // container port -> assigned host port
	SnapshotID  string
}

// IsActive reports whether the container is Running or Paused.
func (c *SectorContainer) IsActive() bool {
	return c.Status == StatusRunning || c.Status == StatusPaused
}

// CanStart reports whether the container may be started from its current
// status.
func (c *SectorContainer) CanStart() bool {
	return c.Status == StatusCreated || c.Status == StatusStopped || c.Status == StatusError
}

// CanStop reports whether the container may be stopped from its current
// status.
func (c *SectorContainer) CanStop() bool {
	return c.Status == StatusRunning || c.Status == StatusPaused
}
