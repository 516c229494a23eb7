package session

import (
	"github.com/rs/zerolog/log"

	"github.com/tos-desktop/tos/pkg/reset"
	"github.com/tos-desktop/tos/pkg/security"
	"github.com/tos-desktop/tos/pkg/semanticinput"
	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
	"github.com/tos-desktop/tos/pkg/viewport"
)

// PromptSink receives a hub's submitted prompt once it clears the
// security gate, e.g. to write it to the hub's PTY.
type PromptSink interface {
	SubmitPrompt(hub types.HubID, command string) error
}

// Coordinator applies the single-direction per-tick data flow: semantic
// events are turned into session-state transitions, which may produce
// viewport navigation steps, spawn confirmation sessions, or enqueue PTY
// writes. It takes no lock of its own; the store, viewport manager and
// security gate each guard their own state and are called one after
// another.
type Coordinator struct {
	Store    *Store
	Viewport *viewport.Manager
	Security *security.Gate
	Reset    *reset.Machine
	Prompts  PromptSink

	focusedSector types.SectorID
	focusedHub    types.HubID
}

// NewCoordinator wires the session state store to its collaborating
// components. resetMachine may be nil for callers that only need
// viewport/security coordination (e.g. tests exercising prompt
// submission) — semantic reset events become no-ops in that case.
func NewCoordinator(store *Store, vp *viewport.Manager, gate *security.Gate, resetMachine *reset.Machine, prompts PromptSink) *Coordinator {
	return &Coordinator{Store: store, Viewport: vp, Security: gate, Reset: resetMachine, Prompts: prompts}
}

// FocusHub sets which sector/hub receives mode and prompt events; a real
// deployment derives this from the focused viewport's path instead.
func (c *Coordinator) FocusHub(sector types.SectorID, hub types.HubID) {
	c.focusedSector, c.focusedHub = sector, hub
}

// Apply applies one semantic event, returning any viewport navigation
// steps it produced.
func (c *Coordinator) Apply(viewportID types.ViewportID, evt semanticinput.SemanticEvent) ([]types.NavigationStep, error) {
	switch evt.Kind {
	case semanticinput.EventZoomIn:
		c.Viewport.ZoomInFocused(types.NodeID(evt.Payload))
		return nil, nil
	case semanticinput.EventZoomOut:
		c.Viewport.ZoomOutFocused()
		return nil, nil
	case semanticinput.EventOpenGlobalOverview:
		vp, ok := c.Viewport.Get(viewportID)
		if !ok {
			return nil, toserr.ErrNotFound
		}
		return c.Viewport.NavigateTo(viewportID, vp.Path.Truncated(func(types.NodeID) bool { return false })), nil
	case semanticinput.EventModeCommand:
		return nil, c.setHubMode(types.HubModeCommand)
	case semanticinput.EventModeDirectory:
		return nil, c.setHubMode(types.HubModeDirectory)
	case semanticinput.EventModeActivity:
		return nil, c.setHubMode(types.HubModeActivity)
	case semanticinput.EventCycleMode:
		return nil, c.cycleHubMode()
	case semanticinput.EventSubmitPrompt:
		return nil, c.submitPrompt(evt.Payload)
	case semanticinput.EventTacticalReset:
		return nil, c.initiateTacticalReset()
	case semanticinput.EventSystemReset:
		return nil, c.initiateSystemReset()
	default:
		log.Debug().Str("kind", evt.Kind.String()).Msg("semantic event has no session-level handler")
		return nil, nil
	}
}

func (c *Coordinator) setHubMode(mode types.HubMode) error {
	ok := c.Store.MutateHub(c.focusedHub, func(h *types.CommandHub) { h.Mode = mode })
	if !ok {
		return toserr.ErrNotFound
	}
	return nil
}

func (c *Coordinator) cycleHubMode() error {
	ok := c.Store.MutateHub(c.focusedHub, func(h *types.CommandHub) {
		h.Mode = (h.Mode + 1) % 3
	})
	if !ok {
		return toserr.ErrNotFound
	}
	return nil
}

// submitPrompt runs the command through the security gate first; a
// matched dangerous command blocks submission until the confirmation
// session completes, per the one-confirmation-per-hub invariant.
func (c *Coordinator) submitPrompt(command string) error {
	if c.Security.HasSession(types.ViewportID{}, c.focusedHub) {
		return toserr.ErrConfirmationRequired
	}

	session, err := c.Security.EvaluateCommand(types.ViewportID{}, c.focusedHub, "", c.focusedSector, command)
	if err != nil {
		return err
	}
	if session != nil {
		c.Store.MutateHub(c.focusedHub, func(h *types.CommandHub) { h.PendingConfirmation = command })
		return toserr.ErrConfirmationRequired
	}

	if c.Prompts != nil {
		if err := c.Prompts.SubmitPrompt(c.focusedHub, command); err != nil {
			return err
		}
	}
	c.Store.MutateHub(c.focusedHub, func(h *types.CommandHub) {
		h.AppendTerminalLine("$ " + command)
		h.PromptBuffer = ""
	})
	return nil
}

// ResolveConfirmation is called once a pending confirmation session
// completes; on success the command that was held in
// PendingConfirmation is finally dispatched to the PTY.
func (c *Coordinator) ResolveConfirmation(hubID types.HubID, approved bool) error {
	hub, ok := c.Store.Hub(hubID)
	if !ok {
		return toserr.ErrNotFound
	}
	command := hub.PendingConfirmation
	c.Store.MutateHub(hubID, func(h *types.CommandHub) { h.PendingConfirmation = "" })

	if !approved || command == "" {
		return nil
	}
	if c.Prompts != nil {
		return c.Prompts.SubmitPrompt(hubID, command)
	}
	return nil
}

// initiateTacticalReset handles a device-originated EventTacticalReset by
// starting a Level 1 (sector-scope) reset on the focused sector, with an
// undo window over the pre-reset state. A Reset Operation and any
// Confirmation Session are mutually exclusive system-wide, so this
// checks AnySessionActive rather than the focused hub alone — a
// confirmation active on some other hub must still block it.
func (c *Coordinator) initiateTacticalReset() error {
	if c.Security.AnySessionActive() {
		return toserr.ErrConfirmationRequired
	}
	if c.Reset == nil {
		return nil
	}
	return c.Reset.InitiateSectorReset(c.focusedSector, true)
}

// initiateSystemReset handles a device-originated EventSystemReset by
// opening the Level 2 system dialog; option selection and tactile
// confirmation progress continue over subsequent events/control calls.
func (c *Coordinator) initiateSystemReset() error {
	if c.Security.AnySessionActive() {
		return toserr.ErrConfirmationRequired
	}
	if c.Reset == nil {
		return nil
	}
	return c.Reset.OpenSystemDialog()
}
