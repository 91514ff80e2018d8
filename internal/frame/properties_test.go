package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestProperty_RoundTrip covers invariant 1 (clean-channel round trip) and
// invariant 6 (payload byte-opacity) together: for any payload of up to 200
// bytes (which always fits EncodeMessage's limit once serialized), decoding
// what was encoded yields back the same message with a verified checksum.
func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "payload")
		seq := rapid.Uint32().Draw(t, "seq")
		msg := NewFileMessage(seq, payload)

		encoded, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("EncodeMessage: %v", err)
		}

		d := NewDecoder(DefaultBufferCap)
		got := d.Feed(encoded)
		if len(got) != 1 {
			t.Fatalf("Feed returned %d messages, want 1", len(got))
		}
		assert.True(t, got[0].VerifyChecksum())
		assert.Equal(t, msg.Payload, got[0].Payload)
		assert.Equal(t, msg.Header, got[0].Header)
	})
}

// TestProperty_FrameBoundaryIdempotence covers invariant 3: feeding an
// encoded frame in arbitrarily small chunks produces the same Message as
// feeding it whole.
func TestProperty_FrameBoundaryIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 100).Draw(t, "payload")
		chunkSize := rapid.IntRange(1, 64).Draw(t, "chunkSize")
		msg := NewTextMessage(1, string(payload))
		encoded, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("EncodeMessage: %v", err)
		}

		d := NewDecoder(DefaultBufferCap)
		var got []Message
		for i := 0; i < len(encoded); i += chunkSize {
			end := i + chunkSize
			if end > len(encoded) {
				end = len(encoded)
			}
			got = append(got, d.Feed(encoded[i:end])...)
		}

		if len(got) != 1 {
			t.Fatalf("got %d messages across chunked feed, want 1", len(got))
		}
		assert.Equal(t, msg.Payload, got[0].Payload)
	})
}

// TestProperty_PrefixJunkTolerance covers invariant 4: a junk prefix of
// random length that never contains the 8-byte preamble run must not
// prevent a following valid frame from being recovered.
func TestProperty_PrefixJunkTolerance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		junkLen := rapid.IntRange(0, 200).Draw(t, "junkLen")
		junk := make([]byte, junkLen)
		for i := range junk {
			// A fixed period-2 pattern with no 0xAA byte at all: trailing
			// 0xAA junk would merge with the real preamble and shift it.
			if i%2 == 0 {
				junk[i] = 0x01
			} else {
				junk[i] = 0x02
			}
		}

		msg := NewPingMessage(1)
		encoded, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("EncodeMessage: %v", err)
		}

		d := NewDecoder(DefaultBufferCap)
		got := d.Feed(append(junk, encoded...))
		if len(got) != 1 {
			t.Fatalf("got %d messages, want 1", len(got))
		}
	})
}

// TestProperty_CorruptionDetected covers invariant 5: flipping any single
// bit inside the length, payload, or checksum region of an encoded frame
// must never yield a verified message with altered content.
func TestProperty_CorruptionDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 50).Draw(t, "payload")
		msg := NewFileMessage(1, payload)
		encoded, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("EncodeMessage: %v", err)
		}

		// Flip a bit strictly after the preamble+start delimiter (the
		// length/payload/checksum region the invariant is scoped to).
		mutableStart := PreambleLen + 2
		if mutableStart >= len(encoded)-2 {
			return
		}
		bitPos := rapid.IntRange(0, (len(encoded)-2-mutableStart)*8-1).Draw(t, "bitPos")
		byteOff := mutableStart + bitPos/8
		bit := uint(bitPos % 8)

		mutated := append([]byte(nil), encoded...)
		mutated[byteOff] ^= 1 << bit

		d := NewDecoder(DefaultBufferCap)
		got := d.Feed(mutated)
		for _, m := range got {
			assert.False(t, m.VerifyChecksum() && !(m.Header == msg.Header && bytesEqualPayload(m, msg)),
				"corruption was not detected: recovered an altered, verified message")
		}
	})
}

func bytesEqualPayload(a, b Message) bool {
	if len(a.Payload) != len(b.Payload) {
		return false
	}
	for i := range a.Payload {
		if a.Payload[i] != b.Payload[i] {
			return false
		}
	}
	return true
}

// TestProperty_BufferCapInvariant covers invariant 7: across any sequence
// of feeds, the decoder's internal buffer never exceeds its configured
// cap.
func TestProperty_BufferCapInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cap := rapid.IntRange(20, 500).Draw(t, "cap")
		d := NewDecoder(cap)

		chunks := rapid.IntRange(1, 30).Draw(t, "chunks")
		for i := 0; i < chunks; i++ {
			chunk := rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(t, "chunk")
			d.Feed(chunk)
			if len(d.buf) > d.cap {
				t.Fatalf("buffer length %d exceeds cap %d", len(d.buf), d.cap)
			}
		}
	})
}
