package wlsurface

import (
	"github.com/tos-desktop/tos/pkg/types"
)

// HandlePointerMotion selects the topmost surface whose rectangle
// contains (x,y) and which is committed and receives_input; the change
// to pointer_focus is atomic. candidateOrder lists surface ids from
// topmost to bottommost (the caller's z-order), since the orchestrator
// itself does not track stacking order.
func (o *Orchestrator) HandlePointerMotion(seatID string, x, y int, candidateOrder []types.SurfaceID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	seat, ok := o.seats[seatID]
	if !ok {
		seat = &types.Seat{ID: seatID, PressedKeys: make(map[uint32]struct{}), PointerButtons: make(map[uint32]bool)}
		o.seats[seatID] = seat
	}
	seat.PointerX, seat.PointerY = float64(x), float64(y)

	var hit *types.SurfaceID
	for _, id := range candidateOrder {
		s, ok := o.surfaces[id]
		if !ok || !s.Committed || !s.ReceivesInput {
			continue
		}
		if x >= s.X && x < s.X+s.W && y >= s.Y && y < s.Y+s.H {
			hitID := id
			hit = &hitID
			break
		}
	}

	old := seat.PointerFocus
	seat.PointerFocus = hit
	if (old == nil) != (hit == nil) || (old != nil && hit != nil && *old != *hit) {
		o.enqueue(CompositorEvent{Kind: EventPointerFocusChanged, SurfaceID: derefOr(hit, uuidZero)})
	}
}

// HandlePointerButton promotes the current pointer_focus to
// keyboard_focus on press (click-to-focus). The previously focused
// toplevel's activated state becomes false and the newly focused one's
// becomes true, atomically.
func (o *Orchestrator) HandlePointerButton(seatID string, button uint32, pressed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	seat, ok := o.seats[seatID]
	if !ok {
		return
	}
	seat.PointerButtons[button] = pressed

	if !pressed || seat.PointerFocus == nil {
		return
	}

	newFocus := *seat.PointerFocus
	oldFocus := seat.KeyboardFocus

	if oldFocus != nil {
		if old, ok := o.surfaces[*oldFocus]; ok {
			old.Role.States = removeState(old.Role.States, "activated")
		}
	}
	if s, ok := o.surfaces[newFocus]; ok {
		s.Role.States = addState(s.Role.States, "activated")
	}
	seat.KeyboardFocus = &newFocus
	o.enqueue(CompositorEvent{Kind: EventKeyboardFocusChanged, SurfaceID: newFocus})
}

func addState(states []string, s string) []string {
	for _, existing := range states {
		if existing == s {
			return states
		}
	}
	return append(states, s)
}

func removeState(states []string, s string) []string {
	out := states[:0]
	for _, existing := range states {
		if existing != s {
			out = append(out, existing)
		}
	}
	return out
}

var uuidZero types.SurfaceID

func derefOr(id *types.SurfaceID, fallback types.SurfaceID) types.SurfaceID {
	if id == nil {
		return fallback
	}
	return *id
}
