package syncproto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTrip covers scenario 3/4 in spec.md §8: a zero-payload
// message and a 1000-byte payload both round-trip byte for byte.
func TestRoundTrip(t *testing.T) {
	cases := []Message{
		{Kind: KindRequest, Source: 123, Target: 456, TimestampUS: 789012345, Sequence: 0, Payload: nil},
		{Kind: KindResponse, Source: 1, Target: 0, TimestampUS: 42, Sequence: 7, Payload: []byte{1, 2, 3}},
		{Kind: KindBroadcast, Source: 9, Target: 0, TimestampUS: 1 << 40, Sequence: 0xFFFFFFFF, Payload: bytes.Repeat([]byte{0xAA}, 1000)},
		{Kind: KindRequest, Source: 1, Target: 2, TimestampUS: 1, Sequence: 1, Payload: make([]byte, 65535)},
	}

	for _, want := range cases {
		encoded, err := want.MarshalBinary()
		require.NoError(t, err)

		var got Message
		require.NoError(t, got.UnmarshalBinary(encoded))
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Source, got.Source)
		assert.Equal(t, want.Target, got.Target)
		assert.Equal(t, want.TimestampUS, got.TimestampUS)
		assert.Equal(t, want.Sequence, got.Sequence)
		assert.True(t, bytes.Equal(want.Payload, got.Payload))

		// Re-serializing the parsed message yields identical bytes.
		reencoded, err := got.MarshalBinary()
		require.NoError(t, err)
		assert.True(t, bytes.Equal(encoded, reencoded))
	}
}

func TestSerializeMinimalMessageIs23Bytes(t *testing.T) {
	m := Message{Kind: KindRequest, Source: 123, Target: 456, TimestampUS: 789012345}
	encoded, err := m.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, encoded, HeaderSize)
}

func TestUnmarshalRejectsShortBuffer(t *testing.T) {
	for n := 0; n < HeaderSize; n++ {
		var m Message
		err := m.UnmarshalBinary(make([]byte, n))
		assert.True(t, errors.Is(err, ErrMalformedMessage))
		assert.True(t, errors.Is(err, ErrShortBuffer))
	}
}

func TestUnmarshalRejectsInvalidKind(t *testing.T) {
	buf := make([]byte, HeaderSize)
	for _, kind := range []byte{0x00, 0x04, 0x7F, 0xFF} {
		buf[0] = kind
		var m Message
		err := m.UnmarshalBinary(buf)
		assert.True(t, errors.Is(err, ErrInvalidKind))
	}
}

func TestUnmarshalRejectsPayloadOverrun(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[0] = byte(KindRequest)
	buf[21] = 10 // declares 10 bytes of payload with none present
	var m Message
	err := m.UnmarshalBinary(buf)
	assert.True(t, errors.Is(err, ErrPayloadOverrun))
}

func TestUnmarshalNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0x01},
		bytes.Repeat([]byte{0xFF}, 3),
		bytes.Repeat([]byte{0x00}, 22),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			var m Message
			_ = m.UnmarshalBinary(in)
		})
	}
}
