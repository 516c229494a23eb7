package semanticinput

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastWinsOverwritesWithinWindow(t *testing.T) {
	r := NewRouter(PolicyLastWins, 8)
	r.Feed(SemanticEvent{Kind: EventZoomIn, Source: ClassKeyboard})
	r.Feed(SemanticEvent{Kind: EventZoomIn, Source: ClassPointer})

	events := r.Drain()
	require.Len(t, events, 2)
	require.Equal(t, ClassPointer, events[1].Source)
}

func TestFirstWinsIgnoresLaterWithinWindow(t *testing.T) {
	current := time.Now()
	r := NewRouter(PolicyFirstWins, 8)
	r.now = func() time.Time { return current }

	r.Feed(SemanticEvent{Kind: EventZoomIn, Source: ClassKeyboard})
	r.Feed(SemanticEvent{Kind: EventZoomIn, Source: ClassPointer})

	events := r.Drain()
	require.Len(t, events, 1)
	require.Equal(t, ClassKeyboard, events[0].Source)
}

func TestPriorityBasedResolvesOnTick(t *testing.T) {
	current := time.Now()
	r := NewRouter(PolicyPriorityBased, 8)
	r.now = func() time.Time { return current }

	r.Feed(SemanticEvent{Kind: EventSelect, Source: ClassEyeTracking})
	r.Feed(SemanticEvent{Kind: EventSelect, Source: ClassAccessibilitySwitch})

	current = current.Add(200 * time.Millisecond)
	r.Tick()

	events := r.Drain()
	require.Len(t, events, 1)
	require.Equal(t, ClassAccessibilitySwitch, events[0].Source, "accessibility switch outranks eye tracking")
}

func TestMultiConfirmRequiresAllDevices(t *testing.T) {
	current := time.Now()
	r := NewRouter(PolicyMultiConfirm, 8)
	r.now = func() time.Time { return current }

	r.Feed(SemanticEvent{Kind: EventSystemReset, Source: ClassKeyboard})
	require.False(t, r.Confirmed(EventSystemReset, []DeviceClass{ClassKeyboard, ClassPointer}))

	r.Feed(SemanticEvent{Kind: EventSystemReset, Source: ClassPointer})
	require.True(t, r.Confirmed(EventSystemReset, []DeviceClass{ClassKeyboard, ClassPointer}))
}

func TestDwellClickFiresOnceAndRearms(t *testing.T) {
	current := time.Now()
	d := NewDwellClick()
	d.now = func() time.Time { return current }

	require.False(t, d.Update(0.5, 0.5))
	current = current.Add(1600 * time.Millisecond)
	require.True(t, d.Update(0.5, 0.5))
	require.False(t, d.Update(0.5, 0.5), "must not fire again until gaze moves")

	d.Update(0.9, 0.9)
	current = current.Add(1600 * time.Millisecond)
	require.True(t, d.Update(0.9, 0.9), "rearms after gaze leaves tolerance")
}

func TestAxisMappingDeadzone(t *testing.T) {
	axis := AxisMapping{Axis: "LeftStickY", Deadzone: 0.2, Curve: CurveLinear, Positive: EventZoomOut, Negative: EventZoomIn}

	_, ok := axis.Resolve(0.1)
	require.False(t, ok)

	kind, ok := axis.Resolve(0.5)
	require.True(t, ok)
	require.Equal(t, EventZoomOut, kind)

	kind, ok = axis.Resolve(-0.5)
	require.True(t, ok)
	require.Equal(t, EventZoomIn, kind)
}
