// Package syncproto implements the Local-Voting-Protocol sync message
// wire format (spec.md §4.E): a fixed 23-byte little-endian header
// followed by a variable-length payload, with no outer framing — one
// underlying transport frame carries exactly one message.
package syncproto

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind identifies a sync message's role.
type Kind uint8

const (
	KindRequest   Kind = 0x01
	KindResponse  Kind = 0x02
	KindBroadcast Kind = 0x03
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindBroadcast:
		return "broadcast"
	default:
		return fmt.Sprintf("kind(0x%02x)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k == KindRequest || k == KindResponse || k == KindBroadcast
}

// HeaderSize is the fixed header length in bytes (spec.md §4.E).
const HeaderSize = 23

// ErrMalformedMessage is the sentinel every parse failure wraps, so
// callers can test with errors.Is(err, syncproto.ErrMalformedMessage)
// regardless of which specific boundary check failed.
var ErrMalformedMessage = errors.New("syncproto: malformed message")

var (
	// ErrShortBuffer: total length < HeaderSize.
	ErrShortBuffer = fmt.Errorf("%w: buffer shorter than header", ErrMalformedMessage)
	// ErrInvalidKind: kind byte not in {0x01, 0x02, 0x03}.
	ErrInvalidKind = fmt.Errorf("%w: invalid kind byte", ErrMalformedMessage)
	// ErrPayloadOverrun: declared payload length exceeds the buffer.
	ErrPayloadOverrun = fmt.Errorf("%w: payload length exceeds buffer", ErrMalformedMessage)
)

// Message is a single Local-Voting-Protocol sync exchange (spec.md §3,
// §4.E).
type Message struct {
	Kind       Kind
	Source     uint32
	Target     uint32 // 0 = broadcast
	TimestampUS uint64
	Sequence   uint32
	Payload    []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	if len(m.Payload) > 0xFFFF {
		return nil, fmt.Errorf("syncproto: payload too large: %d bytes", len(m.Payload))
	}
	buf := make([]byte, HeaderSize+len(m.Payload))
	buf[0] = byte(m.Kind)
	binary.LittleEndian.PutUint32(buf[1:5], m.Source)
	binary.LittleEndian.PutUint32(buf[5:9], m.Target)
	binary.LittleEndian.PutUint64(buf[9:17], m.TimestampUS)
	binary.LittleEndian.PutUint32(buf[17:21], m.Sequence)
	binary.LittleEndian.PutUint16(buf[21:23], uint16(len(m.Payload)))
	copy(buf[HeaderSize:], m.Payload)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It never panics
// on adversarial input: every out-of-bounds condition returns an error
// wrapping ErrMalformedMessage (spec.md §4.E, §8).
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return ErrShortBuffer
	}

	kind := Kind(data[0])
	if !kind.valid() {
		return ErrInvalidKind
	}

	payloadLen := int(binary.LittleEndian.Uint16(data[21:23]))
	if len(data) < HeaderSize+payloadLen {
		return ErrPayloadOverrun
	}

	m.Kind = kind
	m.Source = binary.LittleEndian.Uint32(data[1:5])
	m.Target = binary.LittleEndian.Uint32(data[5:9])
	m.TimestampUS = binary.LittleEndian.Uint64(data[9:17])
	m.Sequence = binary.LittleEndian.Uint32(data[17:21])
	m.Payload = append([]byte(nil), data[HeaderSize:HeaderSize+payloadLen]...)
	return nil
}
