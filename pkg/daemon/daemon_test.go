package daemon

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/session"
	"github.com/tos-desktop/tos/pkg/types"
)

func newTestDaemon() *Daemon {
	return &Daemon{Store: session.NewStore()}
}

type fakeInjector struct {
	clicks [][2]float64
}

func (f *fakeInjector) Click(x, y float64) error {
	f.clicks = append(f.clicks, [2]float64{x, y})
	return nil
}

type fakeGaze struct {
	fires bool
}

func (f fakeGaze) Update(float64, float64) bool { return f.fires }

func TestFeedGazeNoopWithoutGazeOrInjector(t *testing.T) {
	d := newTestDaemon()
	require.NoError(t, d.FeedGaze(0.5, 0.5))

	d.Gaze = fakeGaze{fires: true}
	require.NoError(t, d.FeedGaze(0.5, 0.5), "a fired fixation without an injector must still no-op")
}

func TestFeedGazeClicksWhenDwellCompletes(t *testing.T) {
	d := newTestDaemon()
	d.Gaze = fakeGaze{fires: true}
	injector := &fakeInjector{}
	d.VirtualInput = injector

	require.NoError(t, d.FeedGaze(0.4, 0.6))
	require.Equal(t, [][2]float64{{0.4, 0.6}}, injector.clicks)
}

func TestFeedGazeIgnoresUnfinishedFixation(t *testing.T) {
	d := newTestDaemon()
	d.Gaze = fakeGaze{fires: false}
	injector := &fakeInjector{}
	d.VirtualInput = injector

	require.NoError(t, d.FeedGaze(0.4, 0.6))
	require.Empty(t, injector.clicks)
}

func TestExportImportRoundTrip(t *testing.T) {
	d := newTestDaemon()

	sectorID := types.SectorID(uuid.New())
	hubID := types.HubID(uuid.New())
	appID := types.AppID(uuid.New())

	d.Store.AddSector(types.Sector{ID: sectorID, Name: "research", Hubs: []types.HubID{hubID}})
	d.Store.AddHub(sectorID, types.CommandHub{ID: hubID, Mode: types.HubModeCommand, Apps: []types.AppID{appID}})
	d.Store.AddApplication(hubID, types.Application{ID: appID, Title: "notes"})

	data, err := d.ExportSector(sectorID)
	require.NoError(t, err)
	require.Contains(t, string(data), "research")
	require.Contains(t, string(data), "notes")

	other := newTestDaemon()
	newID, err := other.ImportSector(data)
	require.NoError(t, err)

	sector, ok := other.Store.Sector(newID)
	require.True(t, ok)
	require.Equal(t, "research", sector.Name)
	require.Len(t, sector.Hubs, 1)

	hub, ok := other.Store.Hub(sector.Hubs[0])
	require.True(t, ok)
	require.Len(t, hub.Apps, 1)

	app, ok := other.Store.Application(hub.Apps[0])
	require.True(t, ok)
	require.Equal(t, "notes", app.Title)
}

func TestExportSectorNotFound(t *testing.T) {
	d := newTestDaemon()
	_, err := d.ExportSector(types.SectorID(uuid.New()))
	require.Error(t, err)
}

func TestImportSectorRejectsInvalidJSON(t *testing.T) {
	d := newTestDaemon()
	_, err := d.ImportSector([]byte("not json"))
	require.Error(t, err)
}
