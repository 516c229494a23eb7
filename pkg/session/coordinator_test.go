package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/reset"
	"github.com/tos-desktop/tos/pkg/security"
	"github.com/tos-desktop/tos/pkg/semanticinput"
	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
	"github.com/tos-desktop/tos/pkg/viewport"
)

type recordingSink struct {
	hub     types.HubID
	command string
}

func (r *recordingSink) SubmitPrompt(hub types.HubID, command string) error {
	r.hub, r.command = hub, command
	return nil
}

type noopTerminator struct{}

func (noopTerminator) TerminateSectorProcesses(types.SectorID) error { return nil }

type noopReplacer struct{}

func (noopReplacer) CloneSector(sector types.SectorID) (*types.Sector, error) {
	return &types.Sector{ID: sector}, nil
}
func (noopReplacer) ReplaceSectorWithFreshHub(types.SectorID) error { return nil }
func (noopReplacer) RestoreSector(*types.Sector) error              { return nil }

type noopHostExec struct{}

func (noopHostExec) RestartCompositor() error { return nil }
func (noopHostExec) LogOut() error            { return nil }

func newTestCoordinator() (*Coordinator, *recordingSink) {
	store := NewStore()
	sectorID, hubID := types.SectorID{1}, types.HubID{2}
	store.AddSector(types.Sector{ID: sectorID})
	store.AddHub(sectorID, types.CommandHub{ID: hubID, Mode: types.HubModeCommand})

	vp := viewport.New()
	gate := security.NewGate(security.NewMatcher(security.DefaultPatterns()))
	resetMachine := reset.New(noopTerminator{}, noopReplacer{}, noopHostExec{})
	sink := &recordingSink{}
	c := NewCoordinator(store, vp, gate, resetMachine, sink)
	c.FocusHub(sectorID, hubID)
	return c, sink
}

func TestCoordinatorModeSwitchAndCycle(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventModeDirectory})
	require.NoError(t, err)
	hub, _ := c.Store.Hub(c.focusedHub)
	require.Equal(t, types.HubModeDirectory, hub.Mode)

	_, err = c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventCycleMode})
	require.NoError(t, err)
	hub, _ = c.Store.Hub(c.focusedHub)
	require.Equal(t, types.HubModeActivity, hub.Mode)
}

func TestCoordinatorSubmitsHarmlessPromptDirectly(t *testing.T) {
	c, sink := newTestCoordinator()

	_, err := c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventSubmitPrompt, Payload: "ls -la"})
	require.NoError(t, err)
	require.Equal(t, "ls -la", sink.command)

	hub, _ := c.Store.Hub(c.focusedHub)
	require.Equal(t, []string{"$ ls -la"}, hub.TerminalRing)
}

func TestCoordinatorGatesDangerousPrompt(t *testing.T) {
	c, sink := newTestCoordinator()

	_, err := c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventSubmitPrompt, Payload: "rm -rf /"})
	require.ErrorIs(t, err, toserr.ErrConfirmationRequired)
	require.Empty(t, sink.command, "dangerous command must not reach the PTY before confirmation")

	hub, _ := c.Store.Hub(c.focusedHub)
	require.Equal(t, "rm -rf /", hub.PendingConfirmation)

	require.NoError(t, c.ResolveConfirmation(c.focusedHub, true))
	require.Equal(t, "rm -rf /", sink.command)
}

func TestCoordinatorTacticalResetInvokesMachine(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventTacticalReset})
	require.NoError(t, err)
	require.Equal(t, types.ResetSectorResetting, c.Reset.State().State)
}

func TestCoordinatorSystemResetOpensDialog(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventSystemReset})
	require.NoError(t, err)
	require.Equal(t, types.ResetSystemDialog, c.Reset.State().State)
}

// TestCoordinatorResetBlockedByConfirmationOnAnyHub exercises testable
// property 5: a Reset Operation and any Confirmation Session are
// mutually exclusive system-wide, not only on the focused hub.
func TestCoordinatorResetBlockedByConfirmationOnAnyHub(t *testing.T) {
	c, _ := newTestCoordinator()

	otherHub := types.HubID{9}
	c.Store.AddHub(c.focusedSector, types.CommandHub{ID: otherHub, Mode: types.HubModeCommand})
	_, err := c.Security.EvaluateCommand(types.ViewportID{}, otherHub, "", c.focusedSector, "rm -rf /")
	require.NoError(t, err)

	_, err = c.Apply(types.ViewportID{}, semanticinput.SemanticEvent{Kind: semanticinput.EventTacticalReset})
	require.ErrorIs(t, err, toserr.ErrConfirmationRequired)
	require.Equal(t, types.ResetIdle, c.Reset.State().State)
}
