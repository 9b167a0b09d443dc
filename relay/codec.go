package relay

import (
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
)

// Codec encodes relay messages into websocket frames.
type Codec interface {
	Name() string
	// FrameType is websocket.TextMessage or websocket.BinaryMessage.
	FrameType() int
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the JSON-RPC wire encoding relay servers expect by default.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }

// FrameType returns websocket.TextMessage.
func (JSONCodec) FrameType() int { return websocket.TextMessage }

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CBORCodec encodes messages with CBOR Core Deterministic Encoding. Struct
// fields reuse their json tags.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec builds a CBORCodec. It panics only if the fixed option set
// is rejected by the cbor library.
func NewCBORCodec() *CBORCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("relay: CBOR encoder initialization failed: " + err.Error())
	}
	dec, err := cbor.DecOptions{
		// Any-typed targets decode to map[string]any so values stay
		// interchangeable with the JSON codec.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("relay: CBOR decoder initialization failed: " + err.Error())
	}
	return &CBORCodec{enc: enc, dec: dec}
}

// Name returns "cbor".
func (*CBORCodec) Name() string { return "cbor" }

// FrameType returns websocket.BinaryMessage.
func (*CBORCodec) FrameType() int { return websocket.BinaryMessage }

// Marshal encodes v as CBOR.
func (c *CBORCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

// Unmarshal decodes CBOR data into v.
func (c *CBORCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

// CodecByName returns the codec registered under name ("json" or "cbor").
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "", "json":
		return JSONCodec{}, true
	case "cbor":
		return NewCBORCodec(), true
	default:
		return nil, false
	}
}
