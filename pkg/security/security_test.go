package security

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

// TestDangerousCommandGate exercises S3: "rm -rf /" matches rm_rf_root,
// risk Critical, method MultiButton{3,[ctrl,alt,delete]}.
func TestDangerousCommandGate(t *testing.T) {
	gate := NewGate(NewMatcher(DefaultPatterns()))
	vp, hub, sector := types.ViewportID{1}, types.HubID{2}, types.SectorID{3}

	session, err := gate.EvaluateCommand(vp, hub, "user1", sector, "rm -rf /")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, types.RiskCritical, session.Risk)
	require.Equal(t, types.MethodMultiButton, session.Method.Kind)
	require.Equal(t, 3, session.Method.RequiredCount)
	require.Equal(t, []string{"ctrl", "alt", "delete"}, session.Method.Buttons)

	require.True(t, gate.HasSession(vp, hub))

	// A second dangerous command while pending must be refused distinctly
	// from "no match" — it returns an error rather than a nil session.
	_, err = gate.EvaluateCommand(vp, hub, "user1", sector, "ls")
	require.ErrorIs(t, err, toserr.ErrInvalidState)
}

func TestNoMatchReturnsNilSession(t *testing.T) {
	gate := NewGate(NewMatcher(DefaultPatterns()))
	vp, hub, sector := types.ViewportID{1}, types.HubID{2}, types.SectorID{3}

	session, err := gate.EvaluateCommand(vp, hub, "user1", sector, "ls")
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestMultiButtonCompletionAndCountdown(t *testing.T) {
	gate := NewGate(NewMatcher(DefaultPatterns()))
	vp, hub, sector := types.ViewportID{1}, types.HubID{2}, types.SectorID{3}

	_, err := gate.EvaluateCommand(vp, hub, "user1", sector, "rm -rf /")
	require.NoError(t, err)

	reached, err := gate.UpdateProgress(vp, hub, 1)
	require.NoError(t, err)
	require.False(t, reached)

	reached, err = gate.UpdateProgress(vp, hub, 1)
	require.NoError(t, err)
	require.False(t, reached)

	reached, err = gate.UpdateProgress(vp, hub, 1)
	require.NoError(t, err)
	require.True(t, reached)
}

func TestCancelAppendsBlockedAudit(t *testing.T) {
	gate := NewGate(NewMatcher(DefaultPatterns()))
	vp, hub, sector := types.ViewportID{1}, types.HubID{2}, types.SectorID{3}

	_, err := gate.EvaluateCommand(vp, hub, "user1", sector, "rm -rf /")
	require.NoError(t, err)

	gate.Cancel(vp, hub)
	require.False(t, gate.HasSession(vp, hub))

	log := gate.AuditLog()
	require.Equal(t, types.AuditCommandBlocked, log[len(log)-1].Kind)
	require.Equal(t, "Confirmation failed or cancelled", log[len(log)-1].Reason)
}
