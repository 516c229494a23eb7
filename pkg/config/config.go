// Package config loads tosd's process configuration from the environment
// via struct tags, following the envconfig convention.
package config

import "github.com/kelseyhightower/envconfig"

// DaemonConfig is the root configuration for cmd/tosd.
type DaemonConfig struct {
	Compositor Compositor
	PTY        PTY
	Security   Security
	Container  Container
	Sync       Sync
	Log        Log
}

// Compositor controls the Wayland display connection and output layout.
type Compositor struct {
	WaylandDisplay string `envconfig:"TOS_WAYLAND_DISPLAY" default:"wayland-0"`
	XWaylandEnabled bool  `envconfig:"TOS_XWAYLAND_ENABLED" default:"true"`
}

// PTY controls the shell subprocess environment.
type PTY struct {
	DefaultShell string `envconfig:"TOS_DEFAULT_SHELL" default:"/bin/bash"`
	HookDir      string `envconfig:"TOS_HOOK_DIR" default:"$HOME/.config/tos/hooks"`
}

// Security controls the tactical reset / confirmation gate defaults.
type Security struct {
	ConfirmationTimeoutSeconds int `envconfig:"TOS_CONFIRMATION_TIMEOUT_SECONDS" default:"30"`
	CountdownSeconds           int `envconfig:"TOS_COUNTDOWN_SECONDS" default:"3"`
	UndoWindowSeconds          int `envconfig:"TOS_UNDO_WINDOW_SECONDS" default:"5"`
	AuditRingSize              int `envconfig:"TOS_AUDIT_RING_SIZE" default:"1000"`
}

// Container controls the sector container runtime adapter.
type Container struct {
	DockerHost      string `envconfig:"TOS_DOCKER_HOST" default:"unix:///var/run/docker.sock"`
	DataRoot        string `envconfig:"TOS_DATA_ROOT" default:"$XDG_DATA_HOME/tos/sector-containers"`
	DynamicPortLow  int    `envconfig:"TOS_DYNAMIC_PORT_LOW" default:"30000"`
	DynamicPortHigh int    `envconfig:"TOS_DYNAMIC_PORT_HIGH" default:"39999"`
}

// Sync controls the collaboration sync listener.
type Sync struct {
	ListenAddr   string `envconfig:"TOS_SYNC_LISTEN_ADDR" default:":7878"`
	SharedSecret string `envconfig:"TOS_SYNC_SHARED_SECRET"`
}

// Log controls the structured logger.
type Log struct {
	Level string `envconfig:"TOS_LOG_LEVEL" default:"info"`
}

// LoadDaemonConfig reads DaemonConfig from the process environment.
func LoadDaemonConfig() (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}
