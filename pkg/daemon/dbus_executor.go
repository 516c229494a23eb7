package daemon

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	login1BusName    = "org.freedesktop.login1"
	login1SelfPath   = dbus.ObjectPath("/org/freedesktop/login1/session/self")
	login1SessionIfc = "org.freedesktop.login1.Session"
)

// logindExecutor implements reset.HostExecutor over the systemd-logind
// D-Bus session interface: the same org.freedesktop.login1.Session
// surface Mutter's native backend leases a DRM device through. It
// connects lazily so a daemon running without a session bus (tests,
// headless CI) only pays the dial cost if a reset is actually executed.
type logindExecutor struct {
	connect func() (*dbus.Conn, error)
}

// newLogindExecutor returns a HostExecutor backed by the caller's own
// logind session, reached via the well-known "self" session alias.
func newLogindExecutor() *logindExecutor {
	return &logindExecutor{connect: dbus.ConnectSystemBus}
}

func (e *logindExecutor) session() (*dbus.Conn, dbus.BusObject, error) {
	conn, err := e.connect()
	if err != nil {
		return nil, nil, fmt.Errorf("connect logind bus: %w", err)
	}
	return conn, conn.Object(login1BusName, login1SelfPath), nil
}

// RestartCompositor reactivates the caller's logind session, which
// forces Mutter to release and reacquire its DRM lease and redraw from
// scratch — the closest logind-mediated equivalent to restarting the
// compositor without tearing down the login session itself.
func (e *logindExecutor) RestartCompositor() error {
	conn, obj, err := e.session()
	if err != nil {
		return err
	}
	defer conn.Close()
	return obj.Call(login1SessionIfc+".Activate", 0).Err
}

// LogOut terminates the caller's logind session outright, ending every
// process attached to it and returning to the display/login manager.
func (e *logindExecutor) LogOut() error {
	conn, obj, err := e.session()
	if err != nil {
		return err
	}
	defer conn.Close()
	return obj.Call(login1SessionIfc+".Terminate", 0).Err
}
