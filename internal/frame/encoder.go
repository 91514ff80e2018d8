package frame

import "fmt"

// EncodeMessage serializes msg to the pinned textual form and wraps it in
// the wire envelope (preamble, start delimiter, length, payload, end
// delimiter). It fails with ErrPayloadTooLarge if the serialized message
// exceeds MaxPayloadLen bytes.
func EncodeMessage(msg Message) ([]byte, error) {
	serialized := Serialize(msg)
	if len(serialized) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: serialized message is %d bytes, max %d", ErrPayloadTooLarge, len(serialized), MaxPayloadLen)
	}
	return encodeEnvelope(serialized), nil
}
