package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/config"
	"github.com/tos-desktop/tos/pkg/ptyengine"
	"github.com/tos-desktop/tos/pkg/reset"
	"github.com/tos-desktop/tos/pkg/sectorcontainer"
	"github.com/tos-desktop/tos/pkg/security"
	"github.com/tos-desktop/tos/pkg/semanticinput"
	"github.com/tos-desktop/tos/pkg/session"
	"github.com/tos-desktop/tos/pkg/syncproto"
	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
	"github.com/tos-desktop/tos/pkg/viewport"
	"github.com/tos-desktop/tos/pkg/wlsurface"
)

// Daemon owns every long-lived component tosd runs: the session store
// and its coordinator, the viewport manager, the surface orchestrator,
// the reset/security state machines, the sector container lifecycle
// manager, the semantic input router, and the collaboration sync
// registry.
type Daemon struct {
	Config       config.DaemonConfig
	Store        *session.Store
	Coordinator  *session.Coordinator
	Viewport     *viewport.Manager
	Surfaces     *wlsurface.Orchestrator
	Security     *security.Gate
	ResetMachine *reset.Machine
	Containers   *sectorcontainer.Manager
	Input        *semanticinput.Router
	Sync         *syncproto.Registry
	Hooks        *ptyengine.HookWatcher
	Gaze         GazeDetector
	VirtualInput PointerInjector

	// DefaultViewport is the viewport the tick loop applies drained
	// semantic events against when no client has specified one.
	DefaultViewport types.ViewportID
}

// GazeDetector resolves a normalized eye-tracking sample to a fixation
// completion, satisfied by *semanticinput.DwellClick; a narrow interface
// so tests can substitute a fake without waiting out real dwell timers.
type GazeDetector interface {
	Update(x, y float64) bool
}

// PointerInjector fires a synthetic click at a normalized screen
// position, satisfied by *virtualinput.Injector; a narrow interface so
// tests can substitute a fake instead of a live Wayland compositor.
type PointerInjector interface {
	Click(x, y float64) error
}

// FeedGaze feeds one normalized eye-tracking sample into the dwell-click
// detector, firing a synthetic pointer click through VirtualInput once a
// fixation completes. A nil Gaze or VirtualInput makes this a no-op,
// so daemons built without eye-tracking hardware can call it freely.
func (d *Daemon) FeedGaze(x, y float64) error {
	if d.Gaze == nil || !d.Gaze.Update(x, y) {
		return nil
	}
	if d.VirtualInput == nil {
		return nil
	}
	return d.VirtualInput.Click(x, y)
}

// SpawnShell forks a PTY for an application's shell, wiring in any live
// hook-script override the user has configured for cfg.PTY.HookDir.
func (d *Daemon) SpawnShell(ctx context.Context, cfg ptyengine.Config) (*ptyengine.Handle, error) {
	h, err := ptyengine.Spawn(ctx, cfg)
	if err != nil {
		return nil, err
	}
	h.Hooks = d.Hooks
	return h, nil
}

// sectorTemplate is the .tos-template JSON document shape.
type sectorTemplate struct {
	Name string              `json:"name"`
	Hubs []types.CommandHub  `json:"hubs"`
	Apps []types.Application `json:"apps"`
}

// ExportSector serializes a sector's hubs and applications as a
// .tos-template JSON document.
func (d *Daemon) ExportSector(sectorID types.SectorID) ([]byte, error) {
	sector, ok := d.Store.Sector(sectorID)
	if !ok {
		return nil, toserr.ErrNotFound
	}

	tmpl := sectorTemplate{Name: sector.Name}
	for _, hubID := range sector.Hubs {
		hub, ok := d.Store.Hub(hubID)
		if !ok {
			continue
		}
		tmpl.Hubs = append(tmpl.Hubs, hub)
		for _, appID := range hub.Apps {
			if app, ok := d.Store.Application(appID); ok {
				tmpl.Apps = append(tmpl.Apps, app)
			}
		}
	}

	data, err := json.MarshalIndent(tmpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export sector: %w: %v", toserr.ErrSerialization, err)
	}
	return data, nil
}

// ImportSector creates a new sector from a .tos-template document.
func (d *Daemon) ImportSector(data []byte) (types.SectorID, error) {
	var tmpl sectorTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return types.SectorID{}, fmt.Errorf("import sector: %w: %v", toserr.ErrSerialization, err)
	}

	sectorID := types.SectorID(uuid.New())
	sector := types.Sector{ID: sectorID, Name: tmpl.Name}
	for range tmpl.Hubs {
		sector.Hubs = append(sector.Hubs, types.HubID(uuid.New()))
	}
	d.Store.AddSector(sector)

	for i, hub := range tmpl.Hubs {
		hub.ID = sector.Hubs[i]
		d.Store.AddHub(sectorID, hub)
	}
	for _, app := range tmpl.Apps {
		if len(sector.Hubs) == 0 {
			break
		}
		d.Store.AddApplication(sector.Hubs[0], app)
	}
	return sectorID, nil
}
