// Package syncproto carries the collaboration sync packet stream over a
// websocket transport: one JSON text message per SyncPacket, each
// message boundary satisfying the length-framed requirement without a
// hand-rolled length prefix over raw TCP.
package syncproto

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tos-desktop/tos/pkg/toserr"
	"github.com/tos-desktop/tos/pkg/types"
)

// Conn wraps one websocket connection carrying the sync packet stream,
// tracking whether it has completed AuthRequest/AuthResponse.
type Conn struct {
	ws *websocket.Conn

	mu            sync.Mutex
	authenticated bool
	nodeID        string
}

// NewConn wraps an already-established websocket connection.
func NewConn(ws *websocket.Conn, nodeID string) *Conn {
	return &Conn{ws: ws, nodeID: nodeID}
}

// Send marshals and writes one packet as a websocket text message.
func (c *Conn) Send(pkt types.SyncPacket) error {
	data, err := json.Marshal(pkt)
	if err != nil {
		return fmt.Errorf("syncproto: marshal packet: %w: %v", toserr.ErrSerialization, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("syncproto: write packet: %w: %v", toserr.ErrNetworkError, err)
	}
	return nil
}

// Recv reads and unmarshals the next packet, enforcing that
// unauthenticated connections may only send AuthRequest and Heartbeat.
func (c *Conn) Recv() (types.SyncPacket, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return types.SyncPacket{}, fmt.Errorf("syncproto: read packet: %w: %v", toserr.ErrNetworkError, err)
	}
	var pkt types.SyncPacket
	if err := json.Unmarshal(data, &pkt); err != nil {
		return types.SyncPacket{}, fmt.Errorf("syncproto: unmarshal packet: %w: %v", toserr.ErrSerialization, err)
	}

	c.mu.Lock()
	authed := c.authenticated
	c.mu.Unlock()
	if !authed && pkt.Kind != types.PacketAuthRequest && pkt.Kind != types.PacketHeartbeat {
		return types.SyncPacket{}, fmt.Errorf("syncproto: %s before authentication: %w", pkt.Kind, toserr.ErrAuthRequired)
	}
	return pkt, nil
}

// MarkAuthenticated records that this connection has passed a
// successful AuthRequest/AuthResponse handshake.
func (c *Conn) MarkAuthenticated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = true
}

// Authenticated reports whether the connection passed AuthRequest.
func (c *Conn) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
