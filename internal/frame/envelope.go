package frame

import "encoding/binary"

const (
	// PreambleByte repeated PreambleLen times opens every frame.
	PreambleByte = 0xAA
	PreambleLen  = 8

	// DelimiterByte repeated twice marks the start and end of a frame.
	DelimiterByte = 0x7E

	// MaxPayloadLen is the largest serialized message this frame layer
	// will wrap; EncodeMessage rejects anything larger.
	MaxPayloadLen = 1024

	lengthFieldLen    = 2
	delimiterFieldLen = 2
)

// preamble returns a fresh 8-byte preamble sequence.
func preamble() []byte {
	p := make([]byte, PreambleLen)
	for i := range p {
		p[i] = PreambleByte
	}
	return p
}

// encodeEnvelope wraps a serialized payload in the pinned wire envelope:
// preamble, start delimiter, big-endian length, payload, end delimiter.
func encodeEnvelope(payload []byte) []byte {
	out := make([]byte, 0, PreambleLen+2*delimiterFieldLen+lengthFieldLen+len(payload))
	out = append(out, preamble()...)
	out = append(out, DelimiterByte, DelimiterByte)
	var lenBuf [lengthFieldLen]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	out = append(out, DelimiterByte, DelimiterByte)
	return out
}
