package frame

import "errors"

// ErrPayloadTooLarge is returned by EncodeMessage when the serialized
// message exceeds MaxPayloadLen bytes. The caller is responsible for
// splitting the payload; the frame layer never fragments on its own.
var ErrPayloadTooLarge = errors.New("frame: serialized message exceeds maximum payload size")

// ErrMalformed is returned by Deserialize when the input is not a
// well-formed record in the pinned textual grammar.
var ErrMalformed = errors.New("frame: malformed message encoding")
