package frame

import "time"

func wallClockSeconds() int64 { return time.Now().Unix() }

// NewTextMessage builds a Text message from a UTF-8 string, stamped with
// the current wall-clock time.
func NewTextMessage(seq uint32, text string) Message {
	return NewMessage(KindText, seq, []byte(text), wallClockSeconds)
}

// NewFileMessage builds a File message carrying the given opaque bytes.
func NewFileMessage(seq uint32, data []byte) Message {
	return NewMessage(KindFile, seq, data, wallClockSeconds)
}

// NewAckMessage builds an empty-payload Ack message acknowledging seq.
func NewAckMessage(seq uint32) Message {
	return NewMessage(KindAck, seq, nil, wallClockSeconds)
}

// NewPingMessage builds an empty-payload Ping message.
func NewPingMessage(seq uint32) Message {
	return NewMessage(KindPing, seq, nil, wallClockSeconds)
}
