package types

// SurfaceRoleKind discriminates the role a Wayland surface has taken on.
type SurfaceRoleKind int

const (
	RoleNone SurfaceRoleKind = iota
	RoleToplevel
	RolePopup
	RoleXWayland
	RoleLcarsOverlay
	RoleSubsurface
)

// SurfaceRole carries the role-specific attributes for a Wayland surface.
type SurfaceRole struct {
	Kind SurfaceRoleKind

	// Toplevel
	Title       string
	AppID       string
	Decorations DecorationPolicy
	States      []string

	// Popup / Subsurface
	Parent SurfaceID

	// XWayland
	WindowID         uint32
	Class            string
	OverrideRedirect bool
	TransientFor     uint32
}

// WaylandSurface is the tracked handle for a client buffer.
type WaylandSurface struct {
	ID             SurfaceID
	ClientID       string
	Role           SurfaceRole
	X, Y           int
	W, H           int
	Committed      bool
	TextureHandle  string
	TOSSector      *SectorID
	ReceivesInput  bool
}

// Seat is the keyboard/pointer/touch focus state for one input seat.
type Seat struct {
	ID              string
	KeyboardFocus   *SurfaceID
	PointerFocus    *SurfaceID
	PointerX        float64
	PointerY        float64
	PressedKeys     map[uint32]struct{}
	ModifierState   uint32
	PointerButtons  map[uint32]bool
}

// ClearSurface removes every reference to surface from the seat's focus
// fields. Used after destroy_surface to satisfy the invariant that seat
// focus never outlives the surface it points to.
func (s *Seat) ClearSurface(surface SurfaceID) {
	if s.KeyboardFocus != nil && *s.KeyboardFocus == surface {
		s.KeyboardFocus = nil
	}
	if s.PointerFocus != nil && *s.PointerFocus == surface {
		s.PointerFocus = nil
	}
}
