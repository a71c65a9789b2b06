package codec

import "encoding/json"

// JSON is the standard-library JSON codec.
//
// Templates and score payloads are plain structs of floats and strings,
// which JSON round-trips exactly enough for this purpose. Wrap it in
// Zstd or LZ4 when the bytes travel or rest somewhere size-sensitive.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
