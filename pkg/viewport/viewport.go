// Package viewport owns all viewports and outputs and is the only API
// for zoom navigation: create/remove/split/unsplit viewports, hotplug
// outputs, and compute automated vertical transitions.
package viewport

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/types"
)

// Manager owns the process's viewports and outputs behind a single mutex.
// Operations on unknown ids are no-op soft errors; they never panic.
type Manager struct {
	mu        sync.Mutex
	viewports map[types.ViewportID]*types.Viewport
	outputs   map[types.OutputID]*types.Output
	focused   types.ViewportID
	hasFocus  bool
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{
		viewports: make(map[types.ViewportID]*types.Viewport),
		outputs:   make(map[types.OutputID]*types.Output),
	}
}

// AddOutput registers a new output.
func (m *Manager) AddOutput(out types.Output) types.OutputID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	m.outputs[out.ID] = &out
	return out.ID
}

// RemoveOutput removes an output. Its viewports migrate to any surviving
// output at full geometry; if no other output survives, its viewports are
// removed silently.
func (m *Manager) RemoveOutput(id types.OutputID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.outputs[id]; !ok {
		return
	}
	delete(m.outputs, id)

	var survivor types.OutputID
	found := false
	for oid := range m.outputs {
		survivor = oid
		found = true
		break
	}

	for vid, vp := range m.viewports {
		if vp.OutputID != id {
			continue
		}
		if found {
			vp.OutputID = survivor
			vp.Geometry = types.Full()
		} else {
			delete(m.viewports, vid)
			if m.hasFocus && m.focused == vid {
				m.hasFocus = false
			}
		}
	}
}

// CreateViewport creates a new viewport on the given output.
func (m *Manager) CreateViewport(output types.OutputID, geometry types.Geometry, label string) types.ViewportID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.viewports[id] = &types.Viewport{
		ID:       id,
		OutputID: output,
		Level:    types.GlobalOverview,
		Geometry: geometry,
		Label:    label,
	}
	if !m.hasFocus {
		m.focused = id
		m.hasFocus = true
		m.viewports[id].HasFocus = true
	}
	return id
}

// RemoveViewport removes a viewport; unknown ids are a no-op. If the
// removed viewport held focus, the next viewport by id-ascending order
// becomes focused. If its output is left with exactly one remaining
// viewport, that sibling is restored to full geometry (unsplit).
func (m *Manager) RemoveViewport(id types.ViewportID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vp, ok := m.viewports[id]
	if !ok {
		return
	}
	outputID := vp.OutputID
	wasFocused := m.hasFocus && m.focused == id
	delete(m.viewports, id)

	var siblings []*types.Viewport
	for _, v := range m.viewports {
		if v.OutputID == outputID {
			siblings = append(siblings, v)
		}
	}
	if len(siblings) == 1 {
		siblings[0].Geometry = types.Full()
	}

	if wasFocused {
		m.focusNextLocked()
	}
}

// focusNextLocked selects the next viewport by id-ascending order as new
// focus. Caller must hold m.mu.
func (m *Manager) focusNextLocked() {
	ids := make([]types.ViewportID, 0, len(m.viewports))
	for id := range m.viewports {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		m.hasFocus = false
		return
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	m.setFocusLocked(ids[0])
}

func (m *Manager) setFocusLocked(id types.ViewportID) {
	if m.hasFocus {
		if old, ok := m.viewports[m.focused]; ok {
			old.HasFocus = false
		}
	}
	if vp, ok := m.viewports[id]; ok {
		vp.HasFocus = true
		m.focused = id
		m.hasFocus = true
	}
}

// Focus sets the focused viewport; unknown ids are a no-op.
func (m *Manager) Focus(id types.ViewportID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.viewports[id]; !ok {
		return
	}
	m.setFocusLocked(id)
}

// Get returns a copy of the viewport state, or false if unknown.
func (m *Manager) Get(id types.ViewportID) (types.Viewport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vp, ok := m.viewports[id]
	if !ok {
		return types.Viewport{}, false
	}
	return *vp, true
}

// splitAxis is horizontal (left/right) or vertical (top/bottom).
type splitAxis int

const (
	axisHorizontal splitAxis = iota
	axisVertical
)

// SplitHorizontal halves vp's geometry left/right and creates a new
// viewport occupying the freed half; returns the new id, or uuid.Nil if
// vp is unknown.
func (m *Manager) SplitHorizontal(vp types.ViewportID) types.ViewportID {
	return m.split(vp, axisHorizontal)
}

// SplitVertical halves vp's geometry top/bottom and creates a new
// viewport occupying the freed half; returns the new id, or uuid.Nil if
// vp is unknown.
func (m *Manager) SplitVertical(vp types.ViewportID) types.ViewportID {
	return m.split(vp, axisVertical)
}

func (m *Manager) split(id types.ViewportID, axis splitAxis) types.ViewportID {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.viewports[id]
	if !ok {
		return uuid.Nil
	}

	var newGeom types.Geometry
	switch axis {
	case axisHorizontal:
		halfW := target.Geometry.W / 2
		newGeom = types.Geometry{X: target.Geometry.X + halfW, Y: target.Geometry.Y, W: halfW, H: target.Geometry.H}
		target.Geometry.W = halfW
	case axisVertical:
		halfH := target.Geometry.H / 2
		newGeom = types.Geometry{X: target.Geometry.X, Y: target.Geometry.Y + halfH, W: target.Geometry.W, H: halfH}
		target.Geometry.H = halfH
	}

	newID := uuid.New()
	m.viewports[newID] = &types.Viewport{
		ID:       newID,
		OutputID: target.OutputID,
		Level:    types.GlobalOverview,
		Geometry: newGeom,
	}
	return newID
}

// ZoomInFocused pushes target onto the focused viewport's path and
// recomputes its level by depth. Unknown focus is a no-op.
func (m *Manager) ZoomInFocused(target types.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasFocus {
		return
	}
	vp, ok := m.viewports[m.focused]
	if !ok {
		return
	}
	vp.Path = vp.Path.Push(target)
	vp.Level = vp.Path.Level()
}

// ZoomOutFocused pops the focused viewport's path and recomputes its
// level by depth. Unknown focus is a no-op.
func (m *Manager) ZoomOutFocused() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasFocus {
		return
	}
	vp, ok := m.viewports[m.focused]
	if !ok {
		return
	}
	vp.Path = vp.Path.Pop()
	vp.Level = vp.Path.Level()
}

// NavigateTo computes and applies the automated vertical transition for
// vp from its current path to target, returning the ordered steps for
// the animation layer. Path and level are updated atomically at the end.
func (m *Manager) NavigateTo(id types.ViewportID, target types.ZoomPath) []types.NavigationStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	vp, ok := m.viewports[id]
	if !ok {
		return nil
	}
	steps := vp.Path.TransitionTo(target)
	vp.Path = target
	vp.Level = target.Level()
	return steps
}
