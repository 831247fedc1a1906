package msgbus

import "encoding/json"

// Codec converts a topic payload to and from its wire representation.
// Codecs are supplied per topic by the application; the bus never parses
// JSON itself, it only invokes these hooks.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSONCodec is the standard encoding/json-backed codec for payload types
// with JSON tags.
type JSONCodec[T any] struct{}

// Encode implements Codec.
func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Codec.
func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// CodecFuncs adapts a pair of functions to the Codec interface, for payload
// types whose representation is not plain struct JSON.
type CodecFuncs[T any] struct {
	EncodeFn func(v T) ([]byte, error)
	DecodeFn func(data []byte) (T, error)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(v T) ([]byte, error) { return c.EncodeFn(v) }

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(data []byte) (T, error) { return c.DecodeFn(data) }
