package frame

import (
	"bytes"
	"testing"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"Text", NewTextMessage(1, "Hi")},
		{"Text unicode", NewTextMessage(2, "Hello 世界 🌊")},
		{"File", NewFileMessage(3, []byte{0x00, 0xFF, 0x5A, 0xA5})},
		{"Ack", NewAckMessage(4)},
		{"Ping", NewPingMessage(5)},
		{"empty payload", NewMessage(KindText, 6, nil, func() int64 { return 1700000000 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Serialize(tt.msg)
			decoded, err := Deserialize(encoded)
			if err != nil {
				t.Fatalf("Deserialize error: %v", err)
			}
			if decoded.Header != tt.msg.Header {
				t.Errorf("Header = %+v, want %+v", decoded.Header, tt.msg.Header)
			}
			if !bytes.Equal(decoded.Payload, tt.msg.Payload) {
				t.Errorf("Payload = %v, want %v", decoded.Payload, tt.msg.Payload)
			}
			if decoded.Checksum != tt.msg.Checksum {
				t.Errorf("Checksum = %d, want %d", decoded.Checksum, tt.msg.Checksum)
			}
			if !decoded.VerifyChecksum() {
				t.Error("VerifyChecksum() = false, want true")
			}
		})
	}
}

func TestDeserialize_FieldOrderInsignificant(t *testing.T) {
	data := []byte(`{payload:[72,105],checksum:0,header:{payload_length:2,message_type:"Text",version:1,timestamp:1700000000,sequence_number:1}}`)
	msg, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if msg.Header.Kind != KindText || msg.Header.SequenceNumber != 1 {
		t.Errorf("unexpected header: %+v", msg.Header)
	}
}

func TestDeserialize_WhitespaceInsignificant(t *testing.T) {
	data := []byte(`{ header : { version:1, message_type: "Ping", sequence_number: 9, timestamp: 1, payload_length: 0 } , payload : [] , checksum : 0 }`)
	msg, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if msg.Header.Kind != KindPing {
		t.Errorf("Kind = %v, want Ping", msg.Header.Kind)
	}
}

func TestDeserialize_RejectsMalformed(t *testing.T) {
	cases := []string{
		``,
		`{`,
		`{header:{}}`,
		`{header:{version:1,message_type:"Bogus",sequence_number:1,timestamp:1,payload_length:0},payload:[],checksum:0}`,
		`{header:{version:1,message_type:"Ping",sequence_number:1,timestamp:1,payload_length:0},payload:[999],checksum:0}`,
	}
	for _, c := range cases {
		if _, err := Deserialize([]byte(c)); err == nil {
			t.Errorf("Deserialize(%q) succeeded, want error", c)
		}
	}
}

func TestEncodeMessage_WrapsEnvelope(t *testing.T) {
	msg := NewTextMessage(1, "Hi")
	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage error: %v", err)
	}
	for i := 0; i < PreambleLen; i++ {
		if encoded[i] != PreambleByte {
			t.Fatalf("preamble byte %d = %#02x, want %#02x", i, encoded[i], byte(PreambleByte))
		}
	}
	if encoded[PreambleLen] != DelimiterByte || encoded[PreambleLen+1] != DelimiterByte {
		t.Error("missing start delimiter")
	}
	if encoded[len(encoded)-1] != DelimiterByte || encoded[len(encoded)-2] != DelimiterByte {
		t.Error("missing end delimiter")
	}
}

func TestEncodeMessage_PayloadTooLarge(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 2000)
	msg := NewFileMessage(1, data)
	if _, err := EncodeMessage(msg); err == nil {
		t.Error("EncodeMessage with oversized payload succeeded, want ErrPayloadTooLarge")
	}
}

func TestEncodeMessage_ModeratePayloadFits(t *testing.T) {
	// The textual encoding's per-byte overhead (decimal digits plus a
	// comma) means EncodeMessage's 1024-byte limit binds well before a raw
	// payload of 1024 bytes; a payload comfortably under that still
	// encodes without ErrPayloadTooLarge.
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i)
	}
	msg := NewFileMessage(1, data)
	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage error: %v", err)
	}
	if len(encoded) == 0 {
		t.Error("encoded frame is empty")
	}
}
