package types

// SyncPacketKind discriminates a collaboration sync packet.
type SyncPacketKind string

const (
	PacketSectorState      SyncPacketKind = "SectorState"
	PacketTerminalDelta    SyncPacketKind = "TerminalDelta"
	PacketPresenceUpdate   SyncPacketKind = "PresenceUpdate"
	PacketCommandRelay     SyncPacketKind = "CommandRelay"
	PacketHeartbeat        SyncPacketKind = "Heartbeat"
	PacketFrameBufferUpdate SyncPacketKind = "FrameBufferUpdate"
	PacketAuthRequest      SyncPacketKind = "AuthRequest"
	PacketAuthResponse     SyncPacketKind = "AuthResponse"
)

// SyncPacket is the envelope for every collaboration sync wire message:
// one JSON object per websocket text message (see pkg/syncproto), tagged
// with a discriminator naming one of the eight packet kinds.
type SyncPacket struct {
	Kind SyncPacketKind `json:"kind"`

	// SectorState
	Sector *Sector `json:"sector,omitempty"`

	// TerminalDelta
	HubID HubID  `json:"hub_id,omitempty"`
	Line  string `json:"line,omitempty"`

	// PresenceUpdate
	Participant string  `json:"participant,omitempty"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`

	// CommandRelay
	Command string `json:"command,omitempty"`

	// FrameBufferUpdate
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	PixelFmt string `json:"pixel_format,omitempty"` // "RGBA" | "BGRA" | declared compressed form
	Data     []byte `json:"data,omitempty"`
	Ts       int64  `json:"ts,omitempty"`

	// AuthRequest / AuthResponse
	Token   string `json:"token,omitempty"`
	Success bool   `json:"success,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
