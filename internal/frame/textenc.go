package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// This file implements the one pinned wire encoding this package does not
// get from an ecosystem library: a textual, self-describing key/value
// record format for Message and Header. No structured encoder in the
// retrieval pack (encoding/json, gopkg.in/yaml.v3) emits this exact
// byte-for-byte shape, so the grammar below is fixed here and both sides of
// a conversation must agree on it.
//
// Grammar (whitespace between tokens is insignificant; field order within
// a record is insignificant):
//
//	record  := '{' field (',' field)* '}'
//	field   := ident ':' value
//	value   := record | string | integer | array
//	array   := '[' (integer (',' integer)*)? ']'
//	string  := '"' [A-Za-z]* '"'
//	integer := '-'? digit+
//
// A Message record has exactly three fields: header (a nested record),
// payload (an array of integers 0-255), and checksum (an integer). A
// Header record has exactly five fields: version, message_type (a string
// tag), sequence_number, timestamp, payload_length. Deserialize requires
// these fields and ignores any other field names; its tokenizer accepts any
// bytes other than '"' inside a string, while Serialize only emits letters.
//
// Example: {header:{version:1,message_type:"Text",sequence_number:1,
// timestamp:1700000000,payload_length:2},payload:[72,105],checksum:123}

// record is the generic parsed shape of any '{' ... '}' value: field name
// to one of string, int64, []int64, or record (nested).
type record map[string]any

// SerializeHeader renders a Header alone in the canonical textual form,
// used both as a standalone encoding and as the CRC input alongside the raw
// payload bytes.
func SerializeHeader(h Header) []byte {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "version:%d,", h.Version)
	fmt.Fprintf(&b, "message_type:%q,", h.Kind.String())
	fmt.Fprintf(&b, "sequence_number:%d,", h.SequenceNumber)
	fmt.Fprintf(&b, "timestamp:%d,", h.Timestamp)
	fmt.Fprintf(&b, "payload_length:%d", h.PayloadLength)
	b.WriteByte('}')
	return []byte(b.String())
}

// Serialize renders a Message in the canonical textual form.
func Serialize(msg Message) []byte {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString("header:")
	b.Write(SerializeHeader(msg.Header))
	b.WriteString(",payload:[")
	for i, v := range msg.Payload {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString("],")
	fmt.Fprintf(&b, "checksum:%d", msg.Checksum)
	b.WriteByte('}')
	return []byte(b.String())
}

// Deserialize parses the canonical textual form back into a Message. It
// does not verify the checksum; call msg.VerifyChecksum() separately.
func Deserialize(data []byte) (Message, error) {
	toks, err := tokenize(data)
	if err != nil {
		return Message{}, err
	}
	p := &tokenParser{toks: toks}
	top, err := p.parseRecord()
	if err != nil {
		return Message{}, err
	}
	if !p.atEnd() {
		return Message{}, fmt.Errorf("%w: trailing data after top-level record", ErrMalformed)
	}

	headerVal, ok := top["header"]
	if !ok {
		return Message{}, fmt.Errorf("%w: message record missing \"header\"", ErrMalformed)
	}
	headerRec, ok := headerVal.(record)
	if !ok {
		return Message{}, fmt.Errorf("%w: \"header\" is not a record", ErrMalformed)
	}
	header, err := parseHeaderRecord(headerRec)
	if err != nil {
		return Message{}, err
	}

	payloadVal, ok := top["payload"]
	if !ok {
		return Message{}, fmt.Errorf("%w: message record missing \"payload\"", ErrMalformed)
	}
	payloadInts, ok := payloadVal.([]int64)
	if !ok {
		return Message{}, fmt.Errorf("%w: \"payload\" is not an array", ErrMalformed)
	}
	payload := make([]byte, len(payloadInts))
	for i, v := range payloadInts {
		if v < 0 || v > 255 {
			return Message{}, fmt.Errorf("%w: payload byte %d out of range: %d", ErrMalformed, i, v)
		}
		payload[i] = byte(v)
	}
	if int(header.PayloadLength) != len(payload) {
		return Message{}, fmt.Errorf("%w: payload_length %d does not match payload of %d bytes", ErrMalformed, header.PayloadLength, len(payload))
	}

	checksumVal, ok := top["checksum"]
	if !ok {
		return Message{}, fmt.Errorf("%w: message record missing \"checksum\"", ErrMalformed)
	}
	checksumInt, ok := checksumVal.(int64)
	if !ok {
		return Message{}, fmt.Errorf("%w: \"checksum\" is not an integer", ErrMalformed)
	}

	return Message{
		Header:   header,
		Payload:  payload,
		Checksum: uint32(checksumInt),
	}, nil
}

func parseHeaderRecord(rec record) (Header, error) {
	version, err := recordInt(rec, "version")
	if err != nil {
		return Header{}, err
	}
	if version != ProtocolVersion {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}
	kindTag, err := recordString(rec, "message_type")
	if err != nil {
		return Header{}, err
	}
	kind, err := parseMessageKind(kindTag)
	if err != nil {
		return Header{}, err
	}
	seq, err := recordInt(rec, "sequence_number")
	if err != nil {
		return Header{}, err
	}
	ts, err := recordInt(rec, "timestamp")
	if err != nil {
		return Header{}, err
	}
	plen, err := recordInt(rec, "payload_length")
	if err != nil {
		return Header{}, err
	}
	return Header{
		Version:        uint8(version),
		Kind:           kind,
		SequenceNumber: uint32(seq),
		Timestamp:      ts,
		PayloadLength:  uint16(plen),
	}, nil
}

func recordInt(rec record, key string) (int64, error) {
	v, ok := rec[key]
	if !ok {
		return 0, fmt.Errorf("%w: header record missing %q", ErrMalformed, key)
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: header field %q is not an integer", ErrMalformed, key)
	}
	return i, nil
}

func recordString(rec record, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("%w: header record missing %q", ErrMalformed, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: header field %q is not a string", ErrMalformed, key)
	}
	return s, nil
}

// --- tokenizer ---

type tokenKind int

const (
	tokLBrace tokenKind = iota
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokIdent
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(data []byte) ([]token, error) {
	var toks []token
	i := 0
	n := len(data)
	for i < n {
		c := data[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			toks = append(toks, token{tokLBrace, "{"})
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}"})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "["})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]"})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '"':
			j := i + 1
			for j < n && data[j] != '"' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("%w: unterminated string literal", ErrMalformed)
			}
			toks = append(toks, token{tokString, string(data[i+1 : j])})
			i = j + 1
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < n && data[j] >= '0' && data[j] <= '9' {
				j++
			}
			toks = append(toks, token{tokNumber, string(data[i:j])})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentRune(data[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, string(data[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected byte %q at offset %d", ErrMalformed, c, i)
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentRune(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// --- recursive-descent parser over the token stream ---

type tokenParser struct {
	toks []token
	pos  int
}

func (p *tokenParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *tokenParser) peek() (token, bool) {
	if p.atEnd() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *tokenParser) next() (token, error) {
	t, ok := p.peek()
	if !ok {
		return token{}, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
	}
	p.pos++
	return t, nil
}

func (p *tokenParser) expect(kind tokenKind, what string) (token, error) {
	t, err := p.next()
	if err != nil {
		return token{}, err
	}
	if t.kind != kind {
		return token{}, fmt.Errorf("%w: expected %s, got %q", ErrMalformed, what, t.text)
	}
	return t, nil
}

func (p *tokenParser) parseRecord() (record, error) {
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	rec := record{}
	if t, ok := p.peek(); ok && t.kind == tokRBrace {
		p.pos++
		return rec, nil
	}
	for {
		keyTok, err := p.expect(tokIdent, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		rec[keyTok.text] = val

		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokRBrace {
			break
		}
		if t.kind != tokComma {
			return nil, fmt.Errorf("%w: expected ',' or '}', got %q", ErrMalformed, t.text)
		}
	}
	return rec, nil
}

func (p *tokenParser) parseArray() ([]int64, error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var out []int64
	if t, ok := p.peek(); ok && t.kind == tokRBracket {
		p.pos++
		return out, nil
	}
	for {
		numTok, err := p.expect(tokNumber, "integer")
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(numTok.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrMalformed, numTok.text)
		}
		out = append(out, v)

		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokRBracket {
			break
		}
		if t.kind != tokComma {
			return nil, fmt.Errorf("%w: expected ',' or ']', got %q", ErrMalformed, t.text)
		}
	}
	return out, nil
}

func (p *tokenParser) parseValue() (any, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
	}
	switch t.kind {
	case tokLBrace:
		return p.parseRecord()
	case tokLBracket:
		return p.parseArray()
	case tokString:
		p.pos++
		return t.text, nil
	case tokNumber:
		p.pos++
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrMalformed, t.text)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformed, t.text)
	}
}
