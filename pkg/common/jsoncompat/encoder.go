package jsoncompat

import "encoding/json"

// Raw is a delayed-decoding fragment, both backends treat it as already encoded.
type Raw = json.RawMessage

// Encoder is the subset shared by encoding/json and sonic stream encoders.
type Encoder interface {
	Encode(v any) error
	SetIndent(prefix, indent string)
}

// Decoder is the subset shared by encoding/json and sonic stream decoders.
type Decoder interface {
	Decode(v any) error
}
