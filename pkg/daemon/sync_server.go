package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/syncproto"
	"github.com/tos-desktop/tos/pkg/types"
)

const authDeadline = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SyncServer accepts remote collaboration connections: one websocket per
// peer, joined to the sector named in the request's "sector" query
// parameter after a successful AuthRequest handshake.
type SyncServer struct {
	addr   string
	issuer *syncproto.TokenIssuer
	reg    *syncproto.Registry
	nodeID string
	http   *http.Server
}

// NewSyncServer builds a sync server bound to addr, issuing and
// verifying session tokens with secret.
func NewSyncServer(addr string, secret string, reg *syncproto.Registry) *SyncServer {
	nodeID := uuid.New().String()
	issuer := syncproto.NewTokenIssuer(nodeID, []byte(secret), 24*time.Hour)
	s := &SyncServer{addr: addr, issuer: issuer, reg: reg, nodeID: nodeID}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/sync", s.handleWebsocket)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe runs until ctx is cancelled.
func (s *SyncServer) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *SyncServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sectorParam := r.URL.Query().Get("sector")
	sectorUUID, err := uuid.Parse(sectorParam)
	if err != nil {
		http.Error(w, "missing or invalid sector query parameter", http.StatusBadRequest)
		return
	}
	sector := types.SectorID(sectorUUID)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("sync websocket upgrade failed")
		return
	}
	conn := syncproto.NewConn(ws, s.nodeID)
	defer conn.Close()

	_ = ws.SetReadDeadline(time.Now().Add(authDeadline))
	authReq, err := conn.Recv()
	if err != nil {
		log.Warn().Err(err).Msg("sync auth handshake failed")
		return
	}
	resp, userID, err := s.issuer.HandleAuthRequest(authReq)
	if sendErr := conn.Send(resp); sendErr != nil {
		log.Warn().Err(sendErr).Msg("sync auth response send failed")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("sync auth rejected")
		return
	}
	conn.MarkAuthenticated()
	_ = ws.SetReadDeadline(time.Time{})

	peer := s.reg.RegisterPeer(sector, userID, conn)
	defer s.reg.UnregisterPeer(sector, peer.ID)
	log.Info().Str("user", userID).Str("sector", sector.String()).Msg("peer joined sector sync")

	for {
		pkt, err := conn.Recv()
		if err != nil {
			return
		}
		s.reg.Touch(sector, peer.ID)
		if pkt.Kind == types.PacketHeartbeat {
			continue
		}
		s.reg.Broadcast(sector, peer.ID, pkt)
	}
}
