package session

import (
	"sync"

	"github.com/tos-desktop/tos/pkg/types"
)

// sectorEntry pairs a Sector with the arena indices of its owned hubs,
// so the arena stays flat (sectors/hubs/applications, three vectors)
// while cross-references stay index-based.
type sectorEntry struct {
	sector types.Sector
	hubs   []Index
}

type hubEntry struct {
	hub  types.CommandHub
	apps []Index
}

// Store is the single source of truth for sectors, hubs, and
// applications: three owning arenas, everything else referencing them
// by generation-checked Index rather than pointer.
type Store struct {
	mu sync.Mutex

	sectors Arena[sectorEntry]
	hubs    Arena[hubEntry]
	apps    Arena[types.Application]

	sectorByID map[types.SectorID]Index
	hubByID    map[types.HubID]Index
	appByID    map[types.AppID]Index
}

// NewStore returns an empty session Store.
func NewStore() *Store {
	return &Store{
		sectors:    *NewArena[sectorEntry](),
		hubs:       *NewArena[hubEntry](),
		apps:       *NewArena[types.Application](),
		sectorByID: make(map[types.SectorID]Index),
		hubByID:    make(map[types.HubID]Index),
		appByID:    make(map[types.AppID]Index),
	}
}

// AddSector inserts a new sector with no hubs yet.
func (s *Store) AddSector(sector types.Sector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.sectors.Insert(sectorEntry{sector: sector})
	s.sectorByID[sector.ID] = idx
}

// AddHub inserts a hub owned by sector.
func (s *Store) AddHub(sectorID types.SectorID, hub types.CommandHub) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sIdx, ok := s.sectorByID[sectorID]
	if !ok {
		return false
	}
	entry, ok := s.sectors.Get(sIdx)
	if !ok {
		return false
	}
	hIdx := s.hubs.Insert(hubEntry{hub: hub})
	entry.hubs = append(entry.hubs, hIdx)
	s.hubByID[hub.ID] = hIdx
	return true
}

// AddApplication inserts an application owned by hub.
func (s *Store) AddApplication(hubID types.HubID, app types.Application) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	hIdx, ok := s.hubByID[hubID]
	if !ok {
		return false
	}
	entry, ok := s.hubs.Get(hIdx)
	if !ok {
		return false
	}
	aIdx := s.apps.Insert(app)
	entry.apps = append(entry.apps, aIdx)
	s.appByID[app.ID] = aIdx
	return true
}

// Sector returns a copy of the live sector for sectorID.
func (s *Store) Sector(sectorID types.SectorID) (types.Sector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.sectorByID[sectorID]
	if !ok {
		return types.Sector{}, false
	}
	entry, ok := s.sectors.Get(idx)
	if !ok {
		return types.Sector{}, false
	}
	return entry.sector, true
}

// Hub returns a copy of the live hub for hubID.
func (s *Store) Hub(hubID types.HubID) (types.CommandHub, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.hubByID[hubID]
	if !ok {
		return types.CommandHub{}, false
	}
	entry, ok := s.hubs.Get(idx)
	if !ok {
		return types.CommandHub{}, false
	}
	return entry.hub, true
}

// MutateHub applies fn to the live hub for hubID under the store lock.
func (s *Store) MutateHub(hubID types.HubID, fn func(*types.CommandHub)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.hubByID[hubID]
	if !ok {
		return false
	}
	entry, ok := s.hubs.Get(idx)
	if !ok {
		return false
	}
	fn(&entry.hub)
	return true
}

// Application returns a copy of the live application for appID.
func (s *Store) Application(appID types.AppID) (types.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.appByID[appID]
	if !ok {
		return types.Application{}, false
	}
	entry, ok := s.apps.Get(idx)
	if !ok {
		return types.Application{}, false
	}
	return *entry, true
}

// RemoveSector frees a sector's arena slot along with every hub and
// application it owns, bumping generations so any stale reference fails.
func (s *Store) RemoveSector(sectorID types.SectorID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sIdx, ok := s.sectorByID[sectorID]
	if !ok {
		return false
	}
	entry, ok := s.sectors.Get(sIdx)
	if !ok {
		return false
	}
	for _, hIdx := range entry.hubs {
		s.removeHubLocked(hIdx)
	}
	_ = s.sectors.Remove(sIdx)
	delete(s.sectorByID, sectorID)
	return true
}

func (s *Store) removeHubLocked(hIdx Index) {
	entry, ok := s.hubs.Get(hIdx)
	if !ok {
		return
	}
	for _, aIdx := range entry.apps {
		if app, ok := s.apps.Get(aIdx); ok {
			delete(s.appByID, app.ID)
		}
		_ = s.apps.Remove(aIdx)
	}
	delete(s.hubByID, entry.hub.ID)
	_ = s.hubs.Remove(hIdx)
}
