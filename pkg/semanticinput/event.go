// Package semanticinput converts device-level input from heterogeneous
// sources (keyboard, pointer, game controller, VR controller, hand and
// eye tracking, accessibility switches, voice) into a single stream of
// semantic events, resolving conflicts when more than one device
// produces an event within the same short window.
package semanticinput

import "time"

// SemanticEventKind is an action in the device-independent vocabulary
// every input source is mapped down to.
type SemanticEventKind int

const (
	EventZoomIn SemanticEventKind = iota
	EventZoomOut
	EventOpenGlobalOverview
	EventModeCommand
	EventModeDirectory
	EventModeActivity
	EventCycleMode
	EventSelect
	EventNextElement
	EventPrevElement
	EventSplitViewport
	EventCloseViewport
	EventToggleBezel
	EventTacticalReset
	EventSystemReset
	EventSubmitPrompt
)

func (k SemanticEventKind) String() string {
	names := [...]string{
		"ZoomIn", "ZoomOut", "OpenGlobalOverview", "ModeCommand", "ModeDirectory",
		"ModeActivity", "CycleMode", "Select", "NextElement", "PrevElement",
		"SplitViewport", "CloseViewport", "ToggleBezel", "TacticalReset",
		"SystemReset", "SubmitPrompt",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// DeviceClass is the source of a raw input event, used both for
// per-device mapping table lookup and PriorityBased conflict ordering.
type DeviceClass int

const (
	ClassAccessibilitySwitch DeviceClass = iota
	ClassGameController
	ClassVRController
	ClassHandTracking
	ClassEyeTracking
	ClassARController
	ClassKeyboard
	ClassPointer
	ClassVoice
)

// priorityOrder is the default PriorityBased resolution order, lowest
// index wins ties: AccessibilitySwitch < GameController < VRController <
// HandTracking < EyeTracking < ARController.
var priorityOrder = map[DeviceClass]int{
	ClassAccessibilitySwitch: 0,
	ClassGameController:      1,
	ClassVRController:        2,
	ClassHandTracking:        3,
	ClassEyeTracking:         4,
	ClassARController:        5,
	ClassKeyboard:            6,
	ClassPointer:             7,
	ClassVoice:               8,
}

// SemanticEvent is the resolved, device-independent event handed to the
// session layer.
type SemanticEvent struct {
	Kind       SemanticEventKind
	Source     DeviceClass
	At         time.Time
	Confidence float64 // 1.0 for deterministic devices, <1.0 for voice/gaze
	Payload    string  // e.g. prompt text for SubmitPrompt
}
