package daemon

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tos-desktop/tos/pkg/config"
	"github.com/tos-desktop/tos/pkg/ptyengine"
	"github.com/tos-desktop/tos/pkg/reset"
	"github.com/tos-desktop/tos/pkg/sectorcontainer"
	"github.com/tos-desktop/tos/pkg/security"
	"github.com/tos-desktop/tos/pkg/semanticinput"
	"github.com/tos-desktop/tos/pkg/session"
	"github.com/tos-desktop/tos/pkg/syncproto"
	"github.com/tos-desktop/tos/pkg/types"
	"github.com/tos-desktop/tos/pkg/viewport"
	"github.com/tos-desktop/tos/pkg/virtualinput"
	"github.com/tos-desktop/tos/pkg/wlsurface"
)

const tickInterval = 16 * time.Millisecond

// New assembles a Daemon from config and a container runtime adapter.
// hooks supplies the host-level compositor restart / log-out actions
// that only cmd/tosd, running inside the real session, can perform.
func New(cfg config.DaemonConfig, runtime sectorcontainer.RuntimeAdapter, hooks HostHooks) *Daemon {
	store := session.NewStore()
	vp := viewport.New()
	gate := security.NewGate(security.NewMatcher(security.DefaultPatterns()))
	containers := sectorcontainer.NewManager(runtime, cfg.Container.DynamicPortLow, cfg.Container.DynamicPortHigh)
	router := semanticinput.NewRouter(semanticinput.PolicyPriorityBased, 256)
	registry := syncproto.NewRegistry()
	hookWatcher := ptyengine.NewHookWatcher(os.ExpandEnv(cfg.PTY.HookDir))
	if err := hookWatcher.Start(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.PTY.HookDir).Msg("hook watcher failed to start, falling back to builtin hooks")
	}

	d := &Daemon{
		Config:     cfg,
		Store:      store,
		Viewport:   vp,
		Surfaces:   wlsurface.New(256),
		Security:   gate,
		Containers: containers,
		Input:      router,
		Sync:       registry,
		Hooks:      hookWatcher,
		Gaze:       semanticinput.NewDwellClick(),
	}
	if injector, err := virtualinput.New(1920, 1080); err != nil {
		log.Debug().Err(err).Msg("no Wayland virtual input device available, dwell-click injection disabled")
	} else {
		d.VirtualInput = injector
	}
	d.ResetMachine = reset.New(
		sectorTerminator{d: d},
		sectorReplacer{d: d},
		newHostExecutor(hooks.RestartCompositor, hooks.LogOut),
	)
	d.Coordinator = session.NewCoordinator(store, vp, gate, d.ResetMachine, nil)

	out := vp.AddOutput(types.Output{Name: "primary", Width: 1920, Height: 1080, RefreshMHz: 60000, Scale: 1, Connected: true})
	d.DefaultViewport = vp.CreateViewport(out, types.Full(), "primary")

	return d
}

// HostHooks are the host-process actions a daemon built with New may
// trigger during a system reset; both are optional.
type HostHooks struct {
	RestartCompositor func() error
	LogOut            func() error
}

// Run drives the single-threaded cooperative tick loop: drain input,
// resolve conflicts, apply semantic events, until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("daemon tick loop stopping")
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Daemon) tick() {
	d.Input.Tick()
	events := d.Input.Drain()
	for _, evt := range events {
		if _, err := d.Coordinator.Apply(d.DefaultViewport, evt); err != nil {
			log.Debug().Err(err).Str("event", evt.Kind.String()).Msg("semantic event rejected")
		}
	}
}
