package syncproto

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"

	"github.com/tos-desktop/tos/pkg/types"
)

// Sender is the narrow send capability Registry needs from a
// connection, satisfied by *Conn; tests substitute a fake.
type Sender interface {
	Send(pkt types.SyncPacket) error
}

// Peer is one connected participant in a sector's collaboration session.
type Peer struct {
	ID       uint32
	UserID   string
	Conn     Sender
	LastSeen time.Time
}

// sectorPeers holds every peer connected to one sector's sync stream.
type sectorPeers struct {
	peers *xsync.MapOf[uint32, *Peer]
}

// Registry tracks connected peers per sector and broadcasts packets to
// them, the same registry + broadcast-to-peers shape as a per-session
// client registry, generalized from one shared session to one registry
// entry per TOS sector. Both index levels use xsync's lock-free
// concurrent map rather than sync.Map, avoiding the interface{}
// type-assertion boilerplate sync.Map forces on every access.
type Registry struct {
	sectors *xsync.MapOf[types.SectorID, *sectorPeers]
	nextID  atomic.Uint32
}

// NewRegistry returns an empty peer registry.
func NewRegistry() *Registry {
	return &Registry{sectors: xsync.NewMapOf[types.SectorID, *sectorPeers]()}
}

// RegisterPeer adds a connected peer to a sector's session and returns
// its assigned id.
func (r *Registry) RegisterPeer(sector types.SectorID, userID string, conn Sender) *Peer {
	sp, _ := r.sectors.LoadOrStore(sector, &sectorPeers{peers: xsync.NewMapOf[uint32, *Peer]()})

	peer := &Peer{ID: r.nextID.Add(1), UserID: userID, Conn: conn, LastSeen: time.Now()}
	sp.peers.Store(peer.ID, peer)
	return peer
}

// UnregisterPeer removes a peer from a sector's session.
func (r *Registry) UnregisterPeer(sector types.SectorID, peerID uint32) {
	sp, ok := r.sectors.Load(sector)
	if !ok {
		return
	}
	sp.peers.Delete(peerID)
}

// Broadcast sends a packet to every peer in a sector except fromPeerID
// (pass 0 to include every peer).
func (r *Registry) Broadcast(sector types.SectorID, fromPeerID uint32, pkt types.SyncPacket) {
	sp, ok := r.sectors.Load(sector)
	if !ok {
		return
	}
	sp.peers.Range(func(_ uint32, peer *Peer) bool {
		if peer.ID == fromPeerID {
			return true
		}
		if err := peer.Conn.Send(pkt); err != nil {
			log.Warn().Err(err).Uint32("peer", peer.ID).Msg("dropping peer after send failure")
			sp.peers.Delete(peer.ID)
		}
		return true
	})
}

// Peers returns every peer currently registered for a sector.
func (r *Registry) Peers(sector types.SectorID) []*Peer {
	sp, ok := r.sectors.Load(sector)
	if !ok {
		return nil
	}
	var out []*Peer
	sp.peers.Range(func(_ uint32, peer *Peer) bool {
		out = append(out, peer)
		return true
	})
	return out
}

// Touch refreshes a peer's LastSeen on any received packet, including
// Heartbeat.
func (r *Registry) Touch(sector types.SectorID, peerID uint32) {
	sp, ok := r.sectors.Load(sector)
	if !ok {
		return
	}
	if peer, ok := sp.peers.Load(peerID); ok {
		peer.LastSeen = time.Now()
	}
}
