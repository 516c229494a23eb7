// Package reset implements the Tactical Reset & Security Confirmation
// state machine: sector-scope (Level 1) and system-scope (Level 2)
// resets, each gated by its own tactile confirmation where applicable.
package reset

import (
	"sync"
	"time"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

const defaultUndoWindow = 5 * time.Second

// SectorTerminator terminates every application PID in a sector with
// SIGTERM; implemented by the session/container layers.
type SectorTerminator interface {
	TerminateSectorProcesses(sector types.SectorID) error
}

// SectorReplacer replaces a sector's hubs with a single fresh Command hub
// at the user's home directory and rewrites every viewport referencing
// the sector to CommandHub level. It also returns a clone of the
// pre-reset sector for the undo window.
type SectorReplacer interface {
	CloneSector(sector types.SectorID) (*types.Sector, error)
	ReplaceSectorWithFreshHub(sector types.SectorID) error
	RestoreSector(clone *types.Sector) error
}

// HostExecutor performs host-level restart/logout actions for System
// Reset.
type HostExecutor interface {
	RestartCompositor() error
	LogOut() error
}

// Machine owns the single process-wide ResetOperation. Invariant: exactly
// one reset operation OR confirmation session is active at a time — this
// package enforces the reset side; callers must additionally consult the
// security.Gate before starting a reset if mutual exclusion with an
// active confirmation session is required.
type Machine struct {
	mu          sync.Mutex
	op          types.ResetOperation
	undoWindow  time.Duration
	now         func() time.Time
	terminator  SectorTerminator
	replacer    SectorReplacer
	hostExec    HostExecutor
}

// New returns a Machine in the Idle state.
func New(terminator SectorTerminator, replacer SectorReplacer, hostExec HostExecutor) *Machine {
	return &Machine{
		op:         types.ResetOperation{State: types.ResetIdle},
		undoWindow: defaultUndoWindow,
		now:        time.Now,
		terminator: terminator,
		replacer:   replacer,
		hostExec:   hostExec,
	}
}

// State returns a copy of the current reset operation.
func (m *Machine) State() types.ResetOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.op
}

// InitiateSectorReset performs Level 1 reset: SIGTERM to every PID in the
// sector, hub replacement, viewport rewrite, and — if
// saveStateBeforeReset is true — opens an undo window over a sector
// clone.
func (m *Machine) InitiateSectorReset(sector types.SectorID, saveStateBeforeReset bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.op.State != types.ResetIdle {
		return toserr.ErrResetInProgress
	}

	if err := m.terminator.TerminateSectorProcesses(sector); err != nil {
		return err
	}

	var clone *types.Sector
	if saveStateBeforeReset {
		c, err := m.replacer.CloneSector(sector)
		if err != nil {
			return err
		}
		clone = c
	}

	if err := m.replacer.ReplaceSectorWithFreshHub(sector); err != nil {
		return err
	}

	if saveStateBeforeReset {
		m.op = types.ResetOperation{
			State:     types.ResetSectorResetting,
			SectorID:  sector,
			StartTime: m.now(),
			Snapshot:  clone,
		}
	} else {
		m.op = types.ResetOperation{State: types.ResetIdle}
	}
	return nil
}

// CanUndo reports whether the undo window for the current sector reset is
// still open.
func (m *Machine) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.op.State != types.ResetSectorResetting {
		return false
	}
	return m.now().Sub(m.op.StartTime) < m.undoWindow
}

// UndoSectorReset restores the cloned sector atomically if the undo
// window is still open. Note: the clone captures Hub/Application/
// Viewport state only — it does not snapshot active PTY state, so after
// undo the processes are gone but the hub appears restored. This is
// deliberate: undo restores the view, not the world.
func (m *Machine) UndoSectorReset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.op.State != types.ResetSectorResetting {
		return toserr.ErrNoResetInProgress
	}
	if m.now().Sub(m.op.StartTime) >= m.undoWindow {
		m.op = types.ResetOperation{State: types.ResetIdle}
		return toserr.ErrUndoExpired
	}
	if m.op.Snapshot == nil {
		return toserr.ErrNoSavedState
	}

	if err := m.replacer.RestoreSector(m.op.Snapshot); err != nil {
		return err
	}
	m.op = types.ResetOperation{State: types.ResetIdle}
	return nil
}

// CancelSectorReset exits the undo window without restoring, returning to
// Idle.
func (m *Machine) CancelSectorReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.op = types.ResetOperation{State: types.ResetIdle}
}

// OpenSystemDialog shows the three-option {RestartCompositor, LogOut,
// Cancel} dialog.
func (m *Machine) OpenSystemDialog() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.op.State != types.ResetIdle {
		return toserr.ErrResetInProgress
	}
	m.op = types.ResetOperation{State: types.ResetSystemDialog}
	return nil
}

// SelectSystemOption chooses one of the dialog options. Cancel is
// immediate; Restart/LogOut move to TactileConfirming with the default
// tactile method.
func (m *Machine) SelectSystemOption(option types.SystemResetOption, method types.TactileMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.op.State != types.ResetSystemDialog {
		return toserr.ErrInvalidState
	}
	if option == types.OptionCancel {
		m.op = types.ResetOperation{State: types.ResetIdle}
		return nil
	}
	m.op = types.ResetOperation{
		State:  types.ResetTactileConfirming,
		Option: option,
		Method: method,
	}
	return nil
}

// UpdateSystemConfirmationProgress applies a clamped progress delta; on
// reaching the method's completion threshold, transitions to Countdown
// (default 3s, cancel still allowed).
func (m *Machine) UpdateSystemConfirmationProgress(delta float64, countdown time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.op.State != types.ResetTactileConfirming {
		return toserr.ErrInvalidState
	}
	threshold := m.op.Method.CompletionThreshold()
	m.op.Progress += delta
	if m.op.Progress > threshold {
		m.op.Progress = threshold
	}
	if m.op.Progress < 0 {
		m.op.Progress = 0
	}
	if m.op.Progress >= threshold {
		m.op.State = types.ResetCountdown
		m.op.CountdownEnd = m.now().Add(countdown)
	}
	return nil
}

// CancelSystemReset cancels from any non-Idle system-reset state,
// including during the countdown.
func (m *Machine) CancelSystemReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.op = types.ResetOperation{State: types.ResetIdle}
}

// ExecuteSystemReset runs the selected option once the countdown has
// elapsed: Restart invokes the host restart executor, LogOut terminates
// the session's user processes and returns to the login manager.
func (m *Machine) ExecuteSystemReset() error {
	m.mu.Lock()
	if m.op.State != types.ResetCountdown {
		m.mu.Unlock()
		return toserr.ErrInvalidState
	}
	if m.now().Before(m.op.CountdownEnd) {
		m.mu.Unlock()
		return toserr.ErrInvalidState
	}

	m.op.State = types.ResetExecuting
	option := m.op.Option
	m.mu.Unlock()

	var err error
	switch option {
	case types.OptionRestartCompositor:
		err = m.hostExec.RestartCompositor()
	case types.OptionLogOut:
		err = m.hostExec.LogOut()
	}

	m.mu.Lock()
	m.op = types.ResetOperation{State: types.ResetIdle}
	m.mu.Unlock()
	return err
}
