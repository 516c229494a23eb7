package security

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultCountdown = 3 * time.Second
	defaultAuditSize = 1000
)

// sessionKey identifies the (viewport, hub) pair a confirmation session
// is scoped to. Exactly one session may exist per key at a time.
type sessionKey struct {
	Viewport types.ViewportID
	Hub      types.HubID
}

// Gate owns every active ConfirmationSession and the audit ring.
type Gate struct {
	mu       sync.Mutex
	matcher  *Matcher
	sessions map[sessionKey]*types.ConfirmationSession
	audit    []types.AuditEvent
	auditCap int
	timeout  time.Duration
	countdown time.Duration
	now      func() time.Time
}

// NewGate returns a Gate using the given pattern matcher.
func NewGate(matcher *Matcher) *Gate {
	return &Gate{
		matcher:   matcher,
		sessions:  make(map[sessionKey]*types.ConfirmationSession),
		auditCap:  defaultAuditSize,
		timeout:   defaultTimeout,
		countdown: defaultCountdown,
		now:       time.Now,
	}
}

func (g *Gate) appendAudit(kind types.AuditEventKind, command, reason string) {
	g.audit = append(g.audit, types.AuditEvent{
		ID:        ulid.Make().String(),
		Kind:      kind,
		Command:   command,
		Reason:    reason,
		Timestamp: g.now(),
	})
	if over := len(g.audit) - g.auditCap; over > 0 {
		g.audit = g.audit[over:]
	}
}

// AuditLog returns a copy of the current audit ring.
func (g *Gate) AuditLog() []types.AuditEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.AuditEvent, len(g.audit))
	copy(out, g.audit)
	return out
}

// EvaluateCommand checks command against the dangerous-command table. If
// it matches, a ConfirmationSession is created for (viewport, hub) and
// returned; the caller is responsible for setting the hub's
// pending_confirmation field to command. Returns (nil, nil) when no
// pattern matches.
func (g *Gate) EvaluateCommand(viewport types.ViewportID, hub types.HubID, user string, sector types.SectorID, command string) (*types.ConfirmationSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := sessionKey{Viewport: viewport, Hub: hub}
	if _, exists := g.sessions[key]; exists {
		return nil, toserr.ErrInvalidState
	}

	pattern, matched := g.matcher.Match(command)
	g.appendAudit(types.AuditCommandDetected, command, pattern.Name)
	if !matched {
		return nil, nil
	}

	session := &types.ConfirmationSession{
		ID:         ulid.Make().String(),
		Command:    command,
		Risk:       pattern.Risk,
		Method:     pattern.Method,
		StartedAt:  g.now(),
		User:       user,
		SectorID:   sector,
		HubID:      hub,
		ViewportID: viewport,
	}
	g.sessions[key] = session
	g.appendAudit(types.AuditConfirmationStarted, command, "")
	return session, nil
}

// UpdateProgress clamps and applies a progress update from an input
// source, returning (reachedCompletion, error). Once completion is
// reached the session enters its countdown phase.
func (g *Gate) UpdateProgress(viewport types.ViewportID, hub types.HubID, delta float64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := sessionKey{Viewport: viewport, Hub: hub}
	session, ok := g.sessions[key]
	if !ok {
		return false, fmt.Errorf("no confirmation session for hub: %w", toserr.ErrNotFound)
	}

	if g.now().Sub(session.StartedAt) > g.timeout {
		delete(g.sessions, key)
		g.appendAudit(types.AuditCommandBlocked, session.Command, "Confirmation failed or cancelled")
		return false, toserr.ErrNoResetInProgress
	}

	threshold := session.Method.CompletionThreshold()
	session.Progress += delta
	if session.Progress > threshold {
		session.Progress = threshold
	}
	if session.Progress < 0 {
		session.Progress = 0
	}

	if session.Progress >= threshold && session.CountdownEnd == nil {
		end := g.now().Add(g.countdown)
		session.CountdownEnd = &end
		g.appendAudit(types.AuditConfirmationCompleted, session.Command, "")
		return true, nil
	}
	return false, nil
}

// CountdownElapsed reports whether the session's countdown has finished,
// meaning the original command should now execute.
func (g *Gate) CountdownElapsed(viewport types.ViewportID, hub types.HubID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := sessionKey{Viewport: viewport, Hub: hub}
	session, ok := g.sessions[key]
	if !ok || session.CountdownEnd == nil {
		return false
	}
	return !g.now().Before(*session.CountdownEnd)
}

// Execute finalizes a completed session, appending CommandExecuted to the
// audit log and removing the session. Returns the command text.
func (g *Gate) Execute(viewport types.ViewportID, hub types.HubID) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := sessionKey{Viewport: viewport, Hub: hub}
	session, ok := g.sessions[key]
	if !ok {
		return "", toserr.ErrNotFound
	}
	delete(g.sessions, key)
	g.appendAudit(types.AuditCommandExecuted, session.Command, "")
	return session.Command, nil
}

// Cancel discards a pending confirmation session (cancel is always
// allowed, including during the countdown phase) and appends
// CommandBlocked to the audit log.
func (g *Gate) Cancel(viewport types.ViewportID, hub types.HubID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := sessionKey{Viewport: viewport, Hub: hub}
	session, ok := g.sessions[key]
	if !ok {
		return
	}
	delete(g.sessions, key)
	g.appendAudit(types.AuditCommandBlocked, session.Command, "Confirmation failed or cancelled")
}

// HasSession reports whether (viewport, hub) has an active confirmation
// session — used to enforce the invariant that pending_confirmation is
// non-empty iff a session exists.
func (g *Gate) HasSession(viewport types.ViewportID, hub types.HubID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.sessions[sessionKey{Viewport: viewport, Hub: hub}]
	return ok
}

// AnySessionActive reports whether any hub, on any viewport, has an
// active confirmation session. A Reset Operation and any Confirmation
// Session are mutually exclusive system-wide, not per-hub, so reset
// initiation must gate on this rather than on HasSession for one hub.
func (g *Gate) AnySessionActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions) > 0
}
