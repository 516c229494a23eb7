package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/types"
)

func TestStoreOwnershipHierarchy(t *testing.T) {
	s := NewStore()
	sectorID := types.SectorID{1}
	hubID := types.HubID{2}
	appID := types.AppID{3}

	s.AddSector(types.Sector{ID: sectorID, Name: "work"})
	require.True(t, s.AddHub(sectorID, types.CommandHub{ID: hubID, Mode: types.HubModeCommand}))
	require.True(t, s.AddApplication(hubID, types.Application{ID: appID, Title: "editor"}))

	hub, ok := s.Hub(hubID)
	require.True(t, ok)
	require.Equal(t, types.HubModeCommand, hub.Mode)

	app, ok := s.Application(appID)
	require.True(t, ok)
	require.Equal(t, "editor", app.Title)
}

func TestRemoveSectorCascadesToHubsAndApps(t *testing.T) {
	s := NewStore()
	sectorID := types.SectorID{1}
	hubID := types.HubID{2}
	appID := types.AppID{3}

	s.AddSector(types.Sector{ID: sectorID})
	s.AddHub(sectorID, types.CommandHub{ID: hubID})
	s.AddApplication(hubID, types.Application{ID: appID})

	require.True(t, s.RemoveSector(sectorID))

	_, ok := s.Hub(hubID)
	require.False(t, ok)
	_, ok = s.Application(appID)
	require.False(t, ok)
}

func TestMutateHubAppliesUnderLock(t *testing.T) {
	s := NewStore()
	sectorID := types.SectorID{1}
	hubID := types.HubID{2}
	s.AddSector(types.Sector{ID: sectorID})
	s.AddHub(sectorID, types.CommandHub{ID: hubID})

	ok := s.MutateHub(hubID, func(h *types.CommandHub) { h.AppendTerminalLine("hello") })
	require.True(t, ok)

	hub, _ := s.Hub(hubID)
	require.Equal(t, []string{"hello"}, hub.TerminalRing)
}
