// Package types holds the shared data model for the session store: zoom
// levels and paths, sectors, hubs, applications, viewports, outputs,
// surfaces, seats, confirmation sessions, reset operations, and sector
// containers.
package types

import "github.com/google/uuid"

// ZoomLevel is the enumerated rank of a viewport's position in the
// five-level navigation hierarchy.
type ZoomLevel int

const (
	GlobalOverview ZoomLevel = iota + 1
	CommandHub
	ApplicationFocus
	DetailInspector
	RawBuffer
)

func (z ZoomLevel) String() string {
	switch z {
	case GlobalOverview:
		return "GlobalOverview"
	case CommandHub:
		return "CommandHub"
	case ApplicationFocus:
		return "ApplicationFocus"
	case DetailInspector:
		return "DetailInspector"
	case RawBuffer:
		return "RawBuffer"
	default:
		return "Unknown"
	}
}

// LevelForDepth returns the deterministic zoom level for a path depth:
// depth 0 -> GlobalOverview, depth 1 -> CommandHub, ..., depth >= 4 -> RawBuffer.
func LevelForDepth(depth int) ZoomLevel {
	if depth < 0 {
		depth = 0
	}
	if depth > 4 {
		depth = 4
	}
	return ZoomLevel(depth + 1)
}

// NodeID identifies one step of a zoom path: a sector, hub-or-app, window,
// or element id, depending on depth.
type NodeID string

// ZoomPath is the ordered sequence of node identifiers describing a
// viewport's position in the hierarchy: (sector-id, hub-or-app-id,
// window-id, element-id).
type ZoomPath struct {
	Nodes []NodeID
}

// NewZoomPath builds a path from the given nodes.
func NewZoomPath(nodes ...NodeID) ZoomPath {
	return ZoomPath{Nodes: append([]NodeID(nil), nodes...)}
}

// Depth is the number of nodes in the path.
func (p ZoomPath) Depth() int {
	return len(p.Nodes)
}

// Level is the zoom level implied by this path's depth.
func (p ZoomPath) Level() ZoomLevel {
	return LevelForDepth(p.Depth())
}

// Push returns a new path with node appended.
func (p ZoomPath) Push(node NodeID) ZoomPath {
	out := make([]NodeID, len(p.Nodes)+1)
	copy(out, p.Nodes)
	out[len(p.Nodes)] = node
	return ZoomPath{Nodes: out}
}

// Pop returns a new path with the last node removed. Popping an empty
// path returns an empty path.
func (p ZoomPath) Pop() ZoomPath {
	if len(p.Nodes) == 0 {
		return ZoomPath{}
	}
	out := make([]NodeID, len(p.Nodes)-1)
	copy(out, p.Nodes[:len(p.Nodes)-1])
	return ZoomPath{Nodes: out}
}

// Leaf returns the last node of the path and whether the path is non-empty.
func (p ZoomPath) Leaf() (NodeID, bool) {
	if len(p.Nodes) == 0 {
		return "", false
	}
	return p.Nodes[len(p.Nodes)-1], true
}

// CommonAncestorDepth is the largest k such that the first k elements of
// p and other are pairwise equal.
func (p ZoomPath) CommonAncestorDepth(other ZoomPath) int {
	max := len(p.Nodes)
	if len(other.Nodes) < max {
		max = len(other.Nodes)
	}
	k := 0
	for ; k < max; k++ {
		if p.Nodes[k] != other.Nodes[k] {
			break
		}
	}
	return k
}

// NavigationStepKind discriminates a single step of an automated vertical
// transition.
type NavigationStepKind int

const (
	StepZoomOut NavigationStepKind = iota
	StepZoomIn
)

// NavigationStep is one ordered step of an automated vertical transition,
// consumed by the animation layer.
type NavigationStep struct {
	Kind   NavigationStepKind
	From   ZoomPath // populated for StepZoomOut
	Target NodeID   // populated for StepZoomIn
	To     ZoomPath // populated for StepZoomIn
}

// TransitionTo computes the ordered sequence of NavigationSteps to move
// from p to target via their common ancestor: pop until depth equals the
// common-ancestor-depth, then push each remaining target node in order.
func (p ZoomPath) TransitionTo(target ZoomPath) []NavigationStep {
	commonDepth := p.CommonAncestorDepth(target)

	var steps []NavigationStep
	cur := p
	for cur.Depth() > commonDepth {
		steps = append(steps, NavigationStep{Kind: StepZoomOut, From: cur})
		cur = cur.Pop()
	}
	for i := commonDepth; i < target.Depth(); i++ {
		cur = cur.Push(target.Nodes[i])
		steps = append(steps, NavigationStep{Kind: StepZoomIn, Target: target.Nodes[i], To: cur})
	}
	return steps
}

// Truncated returns the deepest prefix of p whose nodes all satisfy valid,
// stopping at the first invalid node. Used to repair stale paths after a
// session state change removed a referenced node.
func (p ZoomPath) Truncated(valid func(NodeID) bool) ZoomPath {
	for i, n := range p.Nodes {
		if !valid(n) {
			return ZoomPath{Nodes: append([]NodeID(nil), p.Nodes[:i]...)}
		}
	}
	return p
}

// SectorID, HubID, AppID, ViewportID, OutputID, SurfaceID, ContainerID are
// the arena-with-indices handles held outside the session's three owning
// vectors (sectors, hubs, applications). Lookups are index + generation
// checked to detect use-after-free.
type (
	SectorID    = uuid.UUID
	HubID       = uuid.UUID
	AppID       = uuid.UUID
	ViewportID  = uuid.UUID
	OutputID    = uuid.UUID
	SurfaceID   = uuid.UUID
	ContainerID = uuid.UUID
)
