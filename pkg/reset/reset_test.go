package reset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

type fakeTerminator struct {
	terminated []types.SectorID
}

func (f *fakeTerminator) TerminateSectorProcesses(sector types.SectorID) error {
	f.terminated = append(f.terminated, sector)
	return nil
}

type fakeReplacer struct {
	cloned   *types.Sector
	replaced bool
	restored *types.Sector
}

func (f *fakeReplacer) CloneSector(sector types.SectorID) (*types.Sector, error) {
	clone := &types.Sector{ID: sector, Name: "original"}
	f.cloned = clone
	return clone, nil
}

func (f *fakeReplacer) ReplaceSectorWithFreshHub(sector types.SectorID) error {
	f.replaced = true
	return nil
}

func (f *fakeReplacer) RestoreSector(clone *types.Sector) error {
	f.restored = clone
	return nil
}

type fakeHostExec struct {
	restarted bool
	loggedOut bool
}

func (f *fakeHostExec) RestartCompositor() error { f.restarted = true; return nil }
func (f *fakeHostExec) LogOut() error            { f.loggedOut = true; return nil }

// TestSectorResetWithUndo exercises S4: reset at T, can_undo() true at
// T+1s, false at T+6s (5s window), undo at T+1s restores the original
// sector.
func TestSectorResetWithUndo(t *testing.T) {
	terminator := &fakeTerminator{}
	replacer := &fakeReplacer{}
	m := New(terminator, replacer, &fakeHostExec{})

	current := time.Now()
	m.now = func() time.Time { return current }

	sector := types.SectorID{1}
	require.NoError(t, m.InitiateSectorReset(sector, true))
	require.Len(t, terminator.terminated, 1)
	require.True(t, replacer.replaced)

	current = current.Add(1 * time.Second)
	require.True(t, m.CanUndo())

	require.NoError(t, m.UndoSectorReset())
	require.Equal(t, sector, replacer.restored.ID)
	require.Equal(t, "original", replacer.restored.Name)
	require.Equal(t, types.ResetIdle, m.State().State)
}

func TestUndoExpiresAfterWindow(t *testing.T) {
	terminator := &fakeTerminator{}
	replacer := &fakeReplacer{}
	m := New(terminator, replacer, &fakeHostExec{})

	current := time.Now()
	m.now = func() time.Time { return current }

	sector := types.SectorID{1}
	require.NoError(t, m.InitiateSectorReset(sector, true))

	current = current.Add(6 * time.Second)
	require.False(t, m.CanUndo())

	err := m.UndoSectorReset()
	require.ErrorIs(t, err, toserr.ErrUndoExpired)
}

func TestResetInProgressRejectsConcurrentReset(t *testing.T) {
	terminator := &fakeTerminator{}
	replacer := &fakeReplacer{}
	m := New(terminator, replacer, &fakeHostExec{})

	sector := types.SectorID{1}
	require.NoError(t, m.InitiateSectorReset(sector, true))

	err := m.InitiateSectorReset(sector, true)
	require.ErrorIs(t, err, toserr.ErrResetInProgress)
}

func TestSystemResetCancelIsImmediate(t *testing.T) {
	m := New(&fakeTerminator{}, &fakeReplacer{}, &fakeHostExec{})
	require.NoError(t, m.OpenSystemDialog())
	require.NoError(t, m.SelectSystemOption(types.OptionCancel, types.TactileMethod{}))
	require.Equal(t, types.ResetIdle, m.State().State)
}

func TestSystemResetRestartFlow(t *testing.T) {
	hostExec := &fakeHostExec{}
	m := New(&fakeTerminator{}, &fakeReplacer{}, hostExec)

	current := time.Now()
	m.now = func() time.Time { return current }

	require.NoError(t, m.OpenSystemDialog())
	method := types.TactileMethod{Kind: types.MethodHold, HoldMillis: 1000}
	require.NoError(t, m.SelectSystemOption(types.OptionRestartCompositor, method))

	require.NoError(t, m.UpdateSystemConfirmationProgress(1.0, 3*time.Second))
	require.Equal(t, types.ResetCountdown, m.State().State)

	current = current.Add(4 * time.Second)
	require.NoError(t, m.ExecuteSystemReset())
	require.True(t, hostExec.restarted)
	require.Equal(t, types.ResetIdle, m.State().State)
}
