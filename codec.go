package main

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var errNoPayload = errors.New("message has no payload")

// Codec turns envelopes into websocket frames and back
type Codec interface {
	Name() string
	FrameType() int
	Encode(env Envelope) ([]byte, error)
}

// Inbound is a decoded client frame whose payload is decoded on demand,
// once the handler knows what type it expects
type Inbound struct {
	T      string
	decode func(v interface{}) error
}

// Payload decodes the message payload into v
func (in Inbound) Payload(v interface{}) error {
	if in.decode == nil {
		return errNoPayload
	}
	return in.decode(v)
}

// HasPayload reports whether the frame carried a non-null payload
func (in Inbound) HasPayload() bool {
	return in.decode != nil
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return "json" }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return "msgpack" }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

// Encode uses the json struct tags so both codecs share field names
func (msgpackCodec) Encode(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CodecByName returns the codec negotiated with ?codec=; JSON is the default
func CodecByName(name string) Codec {
	if name == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

// DecodeFrame decodes an inbound frame according to its websocket frame type
func DecodeFrame(frameType int, raw []byte) (Inbound, error) {
	if frameType == websocket.BinaryMessage {
		return decodeMsgpack(raw)
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) (Inbound, error) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Inbound{}, err
	}
	in := Inbound{T: env.T}
	if len(env.D) > 0 && !bytes.Equal(env.D, []byte("null")) {
		d := env.D
		in.decode = func(v interface{}) error { return json.Unmarshal(d, v) }
	}
	return in, nil
}

type msgpackInEnvelope struct {
	T string             `msgpack:"t"`
	D msgpack.RawMessage `msgpack:"d"`
}

func decodeMsgpack(raw []byte) (Inbound, error) {
	var env msgpackInEnvelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return Inbound{}, err
	}
	in := Inbound{T: env.T}
	// 0xc0 is the msgpack nil marker
	if len(env.D) > 0 && !(len(env.D) == 1 && env.D[0] == 0xc0) {
		d := env.D
		in.decode = func(v interface{}) error {
			dec := msgpack.NewDecoder(bytes.NewReader(d))
			dec.SetCustomStructTag("json")
			return dec.Decode(v)
		}
	}
	return in, nil
}
