package viewport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/types"
)

// TestAutomatedVerticalTransition exercises S1: starting path [0,1,2],
// target path [0,3] yields ZoomOut, ZoomOut, ZoomIn.
func TestAutomatedVerticalTransition(t *testing.T) {
	from := types.NewZoomPath("0", "1", "2")
	to := types.NewZoomPath("0", "3")

	steps := from.TransitionTo(to)
	require.Len(t, steps, 3)
	require.Equal(t, types.StepZoomOut, steps[0].Kind)
	require.Equal(t, from, steps[0].From)
	require.Equal(t, types.StepZoomOut, steps[1].Kind)
	require.Equal(t, types.NewZoomPath("0", "1"), steps[1].From)
	require.Equal(t, types.StepZoomIn, steps[2].Kind)
	require.Equal(t, types.NodeID("3"), steps[2].Target)
	require.Equal(t, to, steps[2].To)
	require.Equal(t, types.ApplicationFocus, to.Level())
}

// TestSplitAndIndependentNavigation exercises S5: a single viewport split
// horizontally into two equal halves, each navigating independently.
func TestSplitAndIndependentNavigation(t *testing.T) {
	m := New()
	out := m.AddOutput(types.Output{Name: "O1"})
	v1 := m.CreateViewport(out, types.Full(), "v1")

	v2 := m.SplitHorizontal(v1)
	require.NotEqual(t, v1, v2)

	g1, _ := m.Get(v1)
	g2, _ := m.Get(v2)
	require.InDelta(t, 0.5, g1.Geometry.W, 1e-9)
	require.InDelta(t, 0.5, g2.Geometry.W, 1e-9)
	require.InDelta(t, g1.Geometry.X+g1.Geometry.W, g2.Geometry.X, 1e-9)

	m.Focus(v1)
	m.ZoomInFocused("0")
	m.ZoomInFocused("1")
	vp1, _ := m.Get(v1)
	require.Equal(t, types.ApplicationFocus, vp1.Level)

	m.Focus(v2)
	m.ZoomInFocused("2")
	vp2, _ := m.Get(v2)
	require.Equal(t, types.CommandHub, vp2.Level)

	// v1 remains at its independent level.
	vp1Again, _ := m.Get(v1)
	require.Equal(t, types.ApplicationFocus, vp1Again.Level)
}

func TestRemoveFocusedViewportPromotesNextByID(t *testing.T) {
	m := New()
	out := m.AddOutput(types.Output{Name: "O1"})
	v1 := m.CreateViewport(out, types.Full(), "v1")
	v2 := m.CreateViewport(out, types.Full(), "v2")

	m.Focus(v1)
	m.RemoveViewport(v1)

	vp2, ok := m.Get(v2)
	require.True(t, ok)
	require.True(t, vp2.HasFocus)
}

func TestUnsplitRestoresSiblingToFull(t *testing.T) {
	m := New()
	out := m.AddOutput(types.Output{Name: "O1"})
	v1 := m.CreateViewport(out, types.Full(), "v1")
	v2 := m.SplitHorizontal(v1)

	m.RemoveViewport(v2)

	g1, _ := m.Get(v1)
	require.Equal(t, types.Full(), g1.Geometry)
}

func TestUnknownIDOperationsAreNoOps(t *testing.T) {
	m := New()
	unknown := m.SplitHorizontal([16]byte{})
	require.Zero(t, unknown)
	m.RemoveViewport([16]byte{1})
	m.Focus([16]byte{1})
	m.ZoomInFocused("x")
	steps := m.NavigateTo([16]byte{2}, types.NewZoomPath("a"))
	require.Nil(t, steps)
}
