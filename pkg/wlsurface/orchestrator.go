// Package wlsurface maintains the Wayland object graph, routes input via
// hit-testing, and assigns surfaces to sectors. It exposes the protocol
// surface the compositor backend needs and emits a CompositorEvent stream
// consumed by the session on each tick.
package wlsurface

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/types"
)

// CompositorEventKind discriminates one emitted orchestrator event.
type CompositorEventKind int

const (
	EventToplevelCreated CompositorEventKind = iota
	EventSurfaceCommitted
	EventSurfaceDestroyed
	EventClientDisconnected
	EventDecorationChanged
	EventPointerFocusChanged
	EventKeyboardFocusChanged
	EventConfigure
)

// CompositorEvent is one event drained by the session once per frame.
type CompositorEvent struct {
	Kind      CompositorEventKind
	SurfaceID types.SurfaceID
	ClientID  string
}

// Orchestrator owns every tracked Wayland surface and seat for one
// compositor instance.
type Orchestrator struct {
	mu       sync.Mutex
	surfaces map[types.SurfaceID]*types.WaylandSurface
	seats    map[string]*types.Seat
	byClient map[string]map[types.SurfaceID]struct{}

	queue   []CompositorEvent
	maxQueue int
}

// New returns an Orchestrator with a bounded event FIFO of the given
// capacity (0 selects a sensible default).
func New(maxQueue int) *Orchestrator {
	if maxQueue <= 0 {
		maxQueue = 512
	}
	return &Orchestrator{
		surfaces: make(map[types.SurfaceID]*types.WaylandSurface),
		seats:    make(map[string]*types.Seat),
		byClient: make(map[string]map[types.SurfaceID]struct{}),
		maxQueue: maxQueue,
	}
}

func (o *Orchestrator) enqueue(e CompositorEvent) {
	if len(o.queue) >= o.maxQueue {
		// Drop oldest rather than block the caller; the queue is drained
		// once per frame and is not expected to saturate in practice.
		o.queue = o.queue[1:]
	}
	o.queue = append(o.queue, e)
}

// DrainEvents consumes and clears the event queue.
func (o *Orchestrator) DrainEvents() []CompositorEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.queue
	o.queue = nil
	return out
}

// CreateSurface allocates a surface with no role yet.
func (o *Orchestrator) CreateSurface(clientID string) types.SurfaceID {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := uuid.New()
	o.surfaces[id] = &types.WaylandSurface{ID: id, ClientID: clientID}
	if o.byClient[clientID] == nil {
		o.byClient[clientID] = make(map[types.SurfaceID]struct{})
	}
	o.byClient[clientID][id] = struct{}{}
	return id
}

// AssignToplevelRole sets the surface's role to Toplevel with the default
// ServerSide decorations and emits ToplevelCreated. XWayland surfaces take
// their role from AssignXWaylandRole instead and stay ServerSide; a
// toplevel may request ClientSide afterwards via RequestDecoration.
func (o *Orchestrator) AssignToplevelRole(id types.SurfaceID, appID, title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	s.Role = types.SurfaceRole{
		Kind:        types.RoleToplevel,
		Title:       title,
		AppID:       appID,
		Decorations: types.DecorationServerSide,
	}
	o.enqueue(CompositorEvent{Kind: EventToplevelCreated, SurfaceID: id, ClientID: s.ClientID})
}

// AssignXWaylandRole sets the surface's role to XWayland. XWayland
// surfaces always use ServerSide decorations regardless of client hints.
func (o *Orchestrator) AssignXWaylandRole(id types.SurfaceID, windowID uint32, class string, overrideRedirect bool, transientFor uint32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	s.Role = types.SurfaceRole{
		Kind:             types.RoleXWayland,
		WindowID:         windowID,
		Class:            class,
		OverrideRedirect: overrideRedirect,
		TransientFor:     transientFor,
		Decorations:      types.DecorationServerSide,
	}
	o.enqueue(CompositorEvent{Kind: EventToplevelCreated, SurfaceID: id, ClientID: s.ClientID})
}

// RequestDecoration applies a client's decoration hint. XWayland surfaces
// ignore this and remain ServerSide. Legacy is reserved for clients that
// refuse to negotiate (callers select it explicitly, never by hint).
func (o *Orchestrator) RequestDecoration(id types.SurfaceID, policy types.DecorationPolicy) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok || s.Role.Kind == types.RoleXWayland {
		return
	}
	s.Role.Decorations = policy
	o.enqueue(CompositorEvent{Kind: EventDecorationChanged, SurfaceID: id, ClientID: s.ClientID})
	o.enqueue(CompositorEvent{Kind: EventConfigure, SurfaceID: id, ClientID: s.ClientID})
}

// CommitSurface marks a surface committed and emits SurfaceCommitted.
func (o *Orchestrator) CommitSurface(id types.SurfaceID, w, h int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	s.Committed = true
	s.W, s.H = w, h
	o.enqueue(CompositorEvent{Kind: EventSurfaceCommitted, SurfaceID: id, ClientID: s.ClientID})
}

// Configure sets the surface's position/size as decided by the layout
// engine and emits a protocol-level Configure event to the client.
func (o *Orchestrator) Configure(id types.SurfaceID, x, y, w, h int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	s.X, s.Y, s.W, s.H = x, y, w, h
	o.enqueue(CompositorEvent{Kind: EventConfigure, SurfaceID: id, ClientID: s.ClientID})
}

// DestroySurface removes a surface and clears any seat focus references
// to it, before returning. Satisfies testable property 7: after
// DestroySurface(s), any seat field equal to s becomes None before the
// event loop returns.
func (o *Orchestrator) DestroySurface(id types.SurfaceID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.destroySurfaceLocked(id)
}

func (o *Orchestrator) destroySurfaceLocked(id types.SurfaceID) {
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	delete(o.surfaces, id)
	if clientSurfaces, ok := o.byClient[s.ClientID]; ok {
		delete(clientSurfaces, id)
	}
	for _, seat := range o.seats {
		seat.ClearSurface(id)
	}
	o.enqueue(CompositorEvent{Kind: EventSurfaceDestroyed, SurfaceID: id, ClientID: s.ClientID})
}

// DisconnectClient destroys every surface of clientID then emits
// ClientDisconnected.
func (o *Orchestrator) DisconnectClient(clientID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := o.byClient[clientID]
	for id := range ids {
		o.destroySurfaceLocked(id)
	}
	delete(o.byClient, clientID)
	o.enqueue(CompositorEvent{Kind: EventClientDisconnected, ClientID: clientID})
}

// AssignToSector sets a surface's sector assignment.
func (o *Orchestrator) AssignToSector(id types.SurfaceID, sector types.SectorID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return
	}
	s.TOSSector = &sector
}

// GetSurfacesInSector is an O(n) scan returning every surface assigned to
// sector.
func (o *Orchestrator) GetSurfacesInSector(sector types.SectorID) []types.SurfaceID {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []types.SurfaceID
	for id, s := range o.surfaces {
		if s.TOSSector != nil && *s.TOSSector == sector {
			out = append(out, id)
		}
	}
	return out
}

// Surface returns a copy of a surface's state.
func (o *Orchestrator) Surface(id types.SurfaceID) (types.WaylandSurface, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		return types.WaylandSurface{}, false
	}
	return *s, true
}

// EnsureSeat returns the named seat, creating it if absent.
func (o *Orchestrator) EnsureSeat(id string) *types.Seat {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.seats[id]
	if !ok {
		s = &types.Seat{ID: id, PressedKeys: make(map[uint32]struct{}), PointerButtons: make(map[uint32]bool)}
		o.seats[id] = s
	}
	return s
}
