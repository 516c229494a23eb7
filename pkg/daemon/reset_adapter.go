package daemon

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/types"
)

// sectorTerminator implements reset.SectorTerminator by stopping the
// sector's container (if any) rather than killing host processes.
type sectorTerminator struct {
	d *Daemon
}

func (t sectorTerminator) TerminateSectorProcesses(sector types.SectorID) error {
	if _, ok := t.d.Containers.Get(sector); !ok {
		return nil
	}
	return t.d.Containers.StopSector(context.Background(), sector)
}

// sectorReplacer implements reset.SectorReplacer against the session
// store: cloning, replacing with a fresh command hub, and restoring
// are all plain in-memory operations on the arena-backed Store.
type sectorReplacer struct {
	d *Daemon
}

func (r sectorReplacer) CloneSector(sector types.SectorID) (*types.Sector, error) {
	s, ok := r.d.Store.Sector(sector)
	if !ok {
		return nil, fmt.Errorf("clone sector: sector %s not found", sector)
	}
	clone := s
	clone.Hubs = append([]types.HubID(nil), s.Hubs...)
	return &clone, nil
}

func (r sectorReplacer) ReplaceSectorWithFreshHub(sector types.SectorID) error {
	if !r.d.Store.RemoveSector(sector) {
		return fmt.Errorf("replace sector: sector %s not found", sector)
	}
	r.d.Store.AddSector(types.Sector{ID: sector})
	r.d.Store.AddHub(sector, types.CommandHub{ID: types.HubID(uuid.New()), Mode: types.HubModeCommand})
	return nil
}

func (r sectorReplacer) RestoreSector(clone *types.Sector) error {
	if clone == nil {
		return fmt.Errorf("restore sector: nil snapshot")
	}
	r.d.Store.RemoveSector(clone.ID)
	r.d.Store.AddSector(*clone)
	return nil
}

// hostExecutor implements reset.HostExecutor: it runs cmd/tosd's injected
// hook first when one is supplied (for pre-flight notifications), stops if
// that hook fails, and otherwise always makes the real logind session
// D-Bus call.
type hostExecutor struct {
	onRestartCompositor func() error
	onLogOut            func() error
	logind              *logindExecutor
}

func newHostExecutor(onRestartCompositor, onLogOut func() error) hostExecutor {
	return hostExecutor{onRestartCompositor: onRestartCompositor, onLogOut: onLogOut, logind: newLogindExecutor()}
}

func (h hostExecutor) RestartCompositor() error {
	if h.onRestartCompositor != nil {
		if err := h.onRestartCompositor(); err != nil {
			return err
		}
	}
	return h.logind.RestartCompositor()
}

func (h hostExecutor) LogOut() error {
	if h.onLogOut != nil {
		if err := h.onLogOut(); err != nil {
			return err
		}
	}
	return h.logind.LogOut()
}
