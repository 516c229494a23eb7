package semanticinput

// CurveKind shapes a raw axis value before threshold/deadzone logic is
// applied. Carried over from the richer per-device mapping tables that
// describe dead-zone shaping as linear or exponential per axis.
type CurveKind int

const (
	CurveLinear CurveKind = iota
	CurveExponential
)

// Apply shapes a normalized axis value in [-1,1] according to the curve.
func (c CurveKind) Apply(v float64) float64 {
	if c == CurveExponential {
		if v < 0 {
			return -(v * v)
		}
		return v * v
	}
	return v
}

// AxisMapping maps one raw analog axis to a semantic event, with a
// deadzone below which no event fires and a curve shaping the magnitude
// above it.
type AxisMapping struct {
	Axis     string
	Deadzone float64
	Curve    CurveKind
	Positive SemanticEventKind
	Negative SemanticEventKind
}

// Resolve returns the mapped event for a raw axis value, or false if the
// value falls within the deadzone.
func (a AxisMapping) Resolve(raw float64) (SemanticEventKind, bool) {
	shaped := a.Curve.Apply(raw)
	if shaped > -a.Deadzone && shaped < a.Deadzone {
		return 0, false
	}
	if shaped > 0 {
		return a.Positive, true
	}
	return a.Negative, true
}

// ButtonMapping maps one discrete button/key to a semantic event.
type ButtonMapping struct {
	Button string
	Event  SemanticEventKind
}

// GestureMapping maps a named recognized gesture (pinch, swipe-left, …)
// to a semantic event, used by hand-tracking and AR device classes.
type GestureMapping struct {
	Gesture string
	Event   SemanticEventKind
}

// DeviceMapping is the per-device-class table of button, axis, and
// gesture mappings, mirroring the teacher's VK-to-evdev table pattern
// generalized to one table per semantic-input device class.
type DeviceMapping struct {
	Class    DeviceClass
	Buttons  []ButtonMapping
	Axes     []AxisMapping
	Gestures []GestureMapping
}

func (d DeviceMapping) lookupButton(button string) (SemanticEventKind, bool) {
	for _, b := range d.Buttons {
		if b.Button == button {
			return b.Event, true
		}
	}
	return 0, false
}

func (d DeviceMapping) lookupAxis(axis string) (AxisMapping, bool) {
	for _, a := range d.Axes {
		if a.Axis == axis {
			return a, true
		}
	}
	return AxisMapping{}, false
}

func (d DeviceMapping) lookupGesture(gesture string) (SemanticEventKind, bool) {
	for _, g := range d.Gestures {
		if g.Gesture == gesture {
			return g.Event, true
		}
	}
	return 0, false
}

// DefaultKeyboardMapping is the baseline keyboard device mapping table.
func DefaultKeyboardMapping() DeviceMapping {
	return DeviceMapping{
		Class: ClassKeyboard,
		Buttons: []ButtonMapping{
			{Button: "Escape", Event: EventZoomOut},
			{Button: "Return", Event: EventZoomIn},
			{Button: "Super", Event: EventOpenGlobalOverview},
			{Button: "Tab", Event: EventCycleMode},
			{Button: "F1", Event: EventModeCommand},
			{Button: "F2", Event: EventModeDirectory},
			{Button: "F3", Event: EventModeActivity},
		},
	}
}

// DefaultGameControllerMapping is the baseline game-controller mapping
// table: stick axes drive zoom navigation, bumper toggles the bezel.
func DefaultGameControllerMapping() DeviceMapping {
	return DeviceMapping{
		Class: ClassGameController,
		Buttons: []ButtonMapping{
			{Button: "A", Event: EventSelect},
			{Button: "B", Event: EventZoomOut},
			{Button: "Start", Event: EventOpenGlobalOverview},
			{Button: "RightBumper", Event: EventToggleBezel},
		},
		Axes: []AxisMapping{
			{Axis: "LeftStickY", Deadzone: 0.2, Curve: CurveExponential, Positive: EventZoomOut, Negative: EventZoomIn},
			{Axis: "RightStickX", Deadzone: 0.2, Curve: CurveLinear, Positive: EventNextElement, Negative: EventPrevElement},
		},
	}
}
