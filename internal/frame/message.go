package frame

import (
	"fmt"

	"github.com/hsong/ultramodem/internal/fec"
)

// ProtocolVersion is the only header version this package emits or accepts.
// A future binary serialization would require bumping this and dispatching
// on it at decode time.
const ProtocolVersion = 1

// MessageKind tags the payload's application meaning. The tag round-trips
// through the wire encoding as one of the four string names below, not as a
// bare integer, so a frame dump is self-describing without a schema.
type MessageKind int

const (
	KindText MessageKind = iota
	KindFile
	KindAck
	KindPing
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindFile:
		return "File"
	case KindAck:
		return "Ack"
	case KindPing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// parseMessageKind maps a wire tag string back to a MessageKind.
func parseMessageKind(tag string) (MessageKind, error) {
	switch tag {
	case "Text":
		return KindText, nil
	case "File":
		return KindFile, nil
	case "Ack":
		return KindAck, nil
	case "Ping":
		return KindPing, nil
	default:
		return 0, fmt.Errorf("%w: unknown message_type %q", ErrMalformed, tag)
	}
}

// Header carries the fixed fields every Message serializes ahead of its
// payload. PayloadLength is redundant with len(Payload) but is part of the
// pinned wire record and included in the CRC input, so it travels on the
// wire and is checked against the actual payload length on deserialize.
type Header struct {
	Version        uint8
	Kind           MessageKind
	SequenceNumber uint32
	Timestamp      int64
	PayloadLength  uint16
}

// Message is the application-visible unit the frame layer carries. Checksum
// covers the serialized Header concatenated with the raw Payload bytes,
// computed with CRC-32/ISO-HDLC.
type Message struct {
	Header   Header
	Payload  []byte
	Checksum uint32
}

// NewMessage builds a Message with the given kind, sequence number, and
// payload, stamping the header with the time now returns and
// computing the checksum over the canonical header+payload encoding.
func NewMessage(kind MessageKind, seq uint32, payload []byte, now func() int64) Message {
	h := Header{
		Version:        ProtocolVersion,
		Kind:           kind,
		SequenceNumber: seq,
		Timestamp:      now(),
		PayloadLength:  uint16(len(payload)),
	}
	msg := Message{Header: h, Payload: payload}
	msg.Checksum = fec.CRC32(append(SerializeHeader(h), payload...))
	return msg
}

// VerifyChecksum reports whether msg.Checksum matches the CRC-32 computed
// over its current header and payload.
func (msg Message) VerifyChecksum() bool {
	return msg.Checksum == fec.CRC32(append(SerializeHeader(msg.Header), msg.Payload...))
}
