package virtualinput

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveToComputesRelativeDelta(t *testing.T) {
	dx, dy, newX, newY := moveTo(960, 540, 0.25, 0.75, 1920, 1080)
	require.InDelta(t, -480, dx, 0.001)
	require.InDelta(t, 270, dy, 0.001)
	require.InDelta(t, 480, newX, 0.001)
	require.InDelta(t, 810, newY, 0.001)
}

func TestMoveToIsIdempotentAtSamePosition(t *testing.T) {
	dx, dy, _, _ := moveTo(960, 540, 0.5, 0.5, 1920, 1080)
	require.Zero(t, dx)
	require.Zero(t, dy)
}
