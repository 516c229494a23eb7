package semanticinput

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRecognizer struct {
	text       string
	confidence float64
}

func (s stubRecognizer) Transcribe(pcm []byte) (string, float64, error) {
	return s.text, s.confidence, nil
}

type stubMapper struct {
	kind       SemanticEventKind
	confidence float64
	ok         bool
}

func (s stubMapper) Parse(text string) (SemanticEventKind, float64, bool) {
	return s.kind, s.confidence, s.ok
}

func TestVoiceChannelArmsAfterConsecutiveFrames(t *testing.T) {
	v := NewVoiceChannel(stubRecognizer{}, stubMapper{})
	current := time.Now()
	v.now = func() time.Time { return current }

	armed := false
	v.OnAgentReady(func() { armed = true })

	v.FeedEnergyFrame(0.5)
	v.FeedEnergyFrame(0.5)
	require.False(t, armed)
	v.FeedEnergyFrame(0.5)
	require.True(t, armed)
}

func TestVoiceChannelCombinesConfidenceForAutoExecute(t *testing.T) {
	v := NewVoiceChannel(stubRecognizer{text: "open command hub", confidence: 0.9}, stubMapper{kind: EventModeCommand, confidence: 0.9, ok: true})

	var got SemanticEvent
	var autoExec bool
	v.OnEvent(func(e SemanticEvent, exec bool) { got, autoExec = e, exec })

	require.NoError(t, v.HandleUtterance([]byte("pcm")))
	require.Equal(t, EventModeCommand, got.Kind)
	require.InDelta(t, 0.81, got.Confidence, 1e-9)
	require.True(t, autoExec)
}

func TestVoiceChannelBelowThresholdDoesNotAutoExecute(t *testing.T) {
	v := NewVoiceChannel(stubRecognizer{text: "mumble", confidence: 0.5}, stubMapper{kind: EventSelect, confidence: 0.5, ok: true})

	var autoExec bool
	v.OnEvent(func(e SemanticEvent, exec bool) { autoExec = exec })

	require.NoError(t, v.HandleUtterance([]byte("pcm")))
	require.False(t, autoExec)
}
