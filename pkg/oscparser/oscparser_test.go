package oscparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseInterleavedLegacyFrames exercises S2 from the testable
// properties: two legacy 1337; frames interleaved with plain text.
func TestParseInterleavedLegacyFrames(t *testing.T) {
	input := "Hello \x1b]1337;CurrentDir=/home/user\x07 World\x1b]1337;ZoomLevel=3\x07"

	p := New()
	p.Feed([]byte(input))
	clean, events := p.Drain()

	require.Equal(t, "Hello  World", clean)
	require.Len(t, events, 2)
	require.Equal(t, EventCwd, events[0].Kind)
	require.Equal(t, "/home/user", events[0].Payload)
	require.True(t, events[0].Legacy)
	require.Equal(t, EventZoomRequest, events[1].Kind)
	require.Equal(t, "3", events[1].Payload)
}

// TestFeedAcrossReadBoundaries asserts the parser is re-entrant: splitting
// a single frame across multiple Feed calls must not change the result.
func TestFeedAcrossReadBoundaries(t *testing.T) {
	full := "pre\x1b]9003;/home/user\x07post"

	p := New()
	for i := 0; i < len(full); i++ {
		p.Feed([]byte{full[i]})
	}
	clean, events := p.Drain()

	require.Equal(t, "prepost", clean)
	require.Len(t, events, 1)
	require.Equal(t, EventCwd, events[0].Kind)
	require.Equal(t, "/home/user", events[0].Payload)
}

func TestLegacyOSC7AliasesTOS9003(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1b]7;/tmp\x07"))
	_, events := p.Drain()

	require.Len(t, events, 1)
	require.Equal(t, EventCwd, events[0].Kind)
	require.Equal(t, "/tmp", events[0].Payload)
}

func TestUnknownEscapeSequenceIsEmittedVerbatim(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1bQhi"))
	clean, events := p.Drain()

	require.Equal(t, "\x1bQhi", clean)
	require.Empty(t, events)
}

func TestMalformedOscPrefixReturnsToNormal(t *testing.T) {
	p := New()
	// Neither "1337;" nor "9xxx;" nor "7;" - must fall back to raw emission
	// after the 5-byte lookahead window, per the failure semantics in
	// spec.md §4.3 (dropped with a debug log in the caller, parser returns
	// to Normal).
	p.Feed([]byte("\x1b]abcde\x07"))
	clean, events := p.Drain()

	require.Contains(t, clean, "abcde")
	require.Empty(t, events)
}

func TestTOSDirectoryListingCode(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1b]9001;/home;/;2;false;false\n" +
		"file.txt;f;128;rw-r--r--;2024-01-01;false\x07"))
	_, events := p.Drain()

	require.Len(t, events, 1)
	require.Equal(t, EventDirectoryListing, events[0].Kind)
}
