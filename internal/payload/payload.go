package payload

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gorilla/websocket"
)

type Kind int

const (
	KindText Kind = iota
	KindBinary
)

func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "binary"
}

// Payload is a single relay frame. Binary data is always owned by the
// payload; transports may reuse their read buffers after handing a frame over.
type Payload struct {
	Kind Kind
	Text string
	Data []byte
}

func Text(s string) Payload {
	return Payload{Kind: KindText, Text: s}
}

func Binary(b []byte) Payload {
	return Payload{Kind: KindBinary, Data: clone(b)}
}

func (p Payload) IsText() bool {
	return p.Kind == KindText
}

// MessageType maps the payload onto a gorilla/websocket frame type.
func (p Payload) MessageType() int {
	if p.Kind == KindText {
		return websocket.TextMessage
	}
	return websocket.BinaryMessage
}

func (p Payload) Bytes() []byte {
	if p.Kind == KindText {
		return []byte(p.Text)
	}
	return p.Data
}

// Normalize converts an inbound transport value into a Payload. The boolean is
// false for shapes the relay does not understand; those frames are dropped.
func Normalize(v any) (Payload, bool) {
	switch d := v.(type) {
	case string:
		return Text(d), true
	case []byte:
		if d == nil {
			return Payload{}, false
		}
		return Binary(d), true
	case json.RawMessage:
		if d == nil {
			return Payload{}, false
		}
		return Binary(d), true
	case *bytes.Buffer:
		if d == nil {
			return Payload{}, false
		}
		return Binary(d.Bytes()), true
	case io.Reader:
		if d == nil {
			return Payload{}, false
		}
		data, ok := readAll(d)
		if !ok {
			return Payload{}, false
		}
		return Payload{Kind: KindBinary, Data: data}, true
	default:
		return Payload{}, false
	}
}

// readAll drains r. A typed nil reader such as (*strings.Reader)(nil) passes
// the interface nil check but panics on Read; it is treated as unreadable.
func readAll(r io.Reader) (data []byte, ok bool) {
	defer func() {
		if recover() != nil {
			data, ok = nil, false
		}
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return b, true
}

// FromFrame builds a payload from a websocket frame. Control frames and
// unknown frame types are not forwarded.
func FromFrame(messageType int, data []byte) (Payload, bool) {
	switch messageType {
	case websocket.TextMessage:
		return Text(string(data)), true
	case websocket.BinaryMessage:
		if data == nil {
			data = []byte{}
		}
		return Binary(data), true
	default:
		return Payload{}, false
	}
}

// Size is the number of bytes the payload occupies on the wire.
func Size(p Payload) int {
	if p.Kind == KindText {
		return len(p.Text)
	}
	return len(p.Data)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
