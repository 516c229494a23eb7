package syncproto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/types"
)

type recordingSender struct {
	sent []types.SyncPacket
	fail bool
}

func (s *recordingSender) Send(pkt types.SyncPacket) error {
	if s.fail {
		return errSendFailed
	}
	s.sent = append(s.sent, pkt)
	return nil
}

var errSendFailed = &sendError{"send failed"}

type sendError struct{ msg string }

func (e *sendError) Error() string { return e.msg }

func TestBroadcastSkipsSender(t *testing.T) {
	r := NewRegistry()
	sector := types.SectorID{1}

	a := &recordingSender{}
	b := &recordingSender{}
	peerA := r.RegisterPeer(sector, "alice", a)
	r.RegisterPeer(sector, "bob", b)

	r.Broadcast(sector, peerA.ID, types.SyncPacket{Kind: types.PacketHeartbeat})

	require.Empty(t, a.sent)
	require.Len(t, b.sent, 1)
}

func TestBroadcastDropsFailingPeer(t *testing.T) {
	r := NewRegistry()
	sector := types.SectorID{1}

	failing := &recordingSender{fail: true}
	r.RegisterPeer(sector, "carol", failing)

	r.Broadcast(sector, 0, types.SyncPacket{Kind: types.PacketHeartbeat})

	require.Len(t, r.Peers(sector), 0, "peer should be dropped after a failed send")
}

func TestUnregisterPeerRemovesFromBroadcast(t *testing.T) {
	r := NewRegistry()
	sector := types.SectorID{1}

	a := &recordingSender{}
	peer := r.RegisterPeer(sector, "dave", a)
	r.UnregisterPeer(sector, peer.ID)

	require.Empty(t, r.Peers(sector))
}
