package syncproto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tos-desktop/tos/pkg/types"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("node-1", []byte("shared-secret"), time.Hour)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", userID)
}

func TestTokenIssuerRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenIssuer("node-1", []byte("shared-secret"), time.Hour)
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	other := NewTokenIssuer("node-2", []byte("different-secret"), time.Hour)
	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestHandleAuthRequestProducesSuccessResponse(t *testing.T) {
	issuer := NewTokenIssuer("node-1", []byte("shared-secret"), time.Hour)
	token, err := issuer.Issue("bob")
	require.NoError(t, err)

	resp, userID, err := issuer.HandleAuthRequest(types.SyncPacket{Kind: types.PacketAuthRequest, Token: token})
	require.NoError(t, err)
	require.Equal(t, "bob", userID)
	require.True(t, resp.Success)
	require.Equal(t, types.PacketAuthResponse, resp.Kind)
}

func TestHandleAuthRequestRejectsBadToken(t *testing.T) {
	issuer := NewTokenIssuer("node-1", []byte("shared-secret"), time.Hour)

	resp, _, err := issuer.HandleAuthRequest(types.SyncPacket{Kind: types.PacketAuthRequest, Token: "garbage"})
	require.Error(t, err)
	require.False(t, resp.Success)
}
