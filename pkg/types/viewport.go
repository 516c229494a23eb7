package types

// Geometry is a fractional rectangle within an output, each field in [0,1].
type Geometry struct {
	X, Y, W, H float64
}

// Full returns the geometry that covers an entire output.
func Full() Geometry {
	return Geometry{X: 0, Y: 0, W: 1, H: 1}
}

// Viewport is an independent navigation/display pane.
type Viewport struct {
	ID              ViewportID
	OutputID        OutputID
	Level           ZoomLevel
	Path            ZoomPath
	SecondarySurface *SurfaceID
	Geometry        Geometry
	HasFocus        bool
	Label           string
}

// Output is a physical display descriptor.
type Output struct {
	ID          OutputID
	Name        string
	Width       int
	Height      int
	RefreshMHz  int
	Scale       float64
	Connected   bool
}
