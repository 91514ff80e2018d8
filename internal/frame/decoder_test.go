package frame

import "testing"

func mustEncode(t *testing.T, msg Message) []byte {
	t.Helper()
	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage error: %v", err)
	}
	return encoded
}

func TestDecoder_CleanRoundTrip(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	msg := NewTextMessage(1, "Hi")
	encoded := mustEncode(t, msg)

	got := d.Feed(encoded)
	if len(got) != 1 {
		t.Fatalf("Feed returned %d messages, want 1", len(got))
	}
	if !got[0].VerifyChecksum() {
		t.Error("VerifyChecksum() = false")
	}
	if string(got[0].Payload) != "Hi" {
		t.Errorf("Payload = %q, want %q", got[0].Payload, "Hi")
	}
	if d.Stats().FramesDecoded != 1 {
		t.Errorf("FramesDecoded = %d, want 1", d.Stats().FramesDecoded)
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	msg := NewTextMessage(7, "byte by byte")
	encoded := mustEncode(t, msg)

	var got []Message
	for _, b := range encoded {
		got = append(got, d.Feed([]byte{b})...)
	}

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if string(got[0].Payload) != "byte by byte" {
		t.Errorf("Payload = %q", got[0].Payload)
	}
}

func TestDecoder_PrefixJunkTolerance(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	msg := NewTextMessage(1, "after junk")
	encoded := mustEncode(t, msg)

	junk := make([]byte, 100)
	for i := range junk {
		junk[i] = byte(i%251 + 1) // never 0xAA, never forms the preamble run
	}

	got := d.Feed(append(junk, encoded...))
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if string(got[0].Payload) != "after junk" {
		t.Errorf("Payload = %q", got[0].Payload)
	}
}

func TestDecoder_CorruptionDropsFrame(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	msg := NewTextMessage(1, "will be corrupted")
	encoded := mustEncode(t, msg)
	encoded[len(encoded)/2] ^= 0xFF

	got := d.Feed(encoded)
	if len(got) != 0 {
		t.Fatalf("got %d messages, want 0 for corrupted frame", len(got))
	}
}

func TestDecoder_TwoFramesOneByteAtATime(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	first := mustEncode(t, NewTextMessage(1, "first"))
	second := mustEncode(t, NewTextMessage(2, "second"))
	both := append(append([]byte{}, first...), second...)

	var got []Message
	for _, b := range both {
		got = append(got, d.Feed([]byte{b})...)
	}

	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if string(got[0].Payload) != "first" || string(got[1].Payload) != "second" {
		t.Errorf("got payloads %q, %q", got[0].Payload, got[1].Payload)
	}
}

func TestDecoder_BufferNeverExceedsCap(t *testing.T) {
	cap := 200
	d := NewDecoder(cap)

	noise := make([]byte, 5000)
	for i := range noise {
		noise[i] = byte(i % 7) // never the preamble byte
	}

	for i := 0; i < len(noise); i += 17 {
		end := i + 17
		if end > len(noise) {
			end = len(noise)
		}
		d.Feed(noise[i:end])
		if len(d.buf) > d.cap {
			t.Fatalf("buffer length %d exceeds cap %d", len(d.buf), d.cap)
		}
	}
	if d.Stats().BufferOverflow == 0 {
		t.Error("expected at least one buffer overflow with sustained noise")
	}
}

func TestDecoder_EmptyShortInputYieldsNothing(t *testing.T) {
	d := NewDecoder(DefaultBufferCap)
	if got := d.Feed([]byte{0x01, 0x02, 0x03}); len(got) != 0 {
		t.Errorf("got %d messages from short junk, want 0", len(got))
	}
}
