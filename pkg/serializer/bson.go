package serializer

import (
	"bytes"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BSON serializes session data as a BSON document.
//
// Integers that fit into 32 bits come back as int, larger ones as int64.
// Use []byte rather than string for values that are not valid UTF-8.
type BSON struct{}

// Serialize encodes data as a BSON document.
func (BSON) Serialize(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}

	b, err := bson.Marshal(bson.M(data))
	if err != nil {
		return nil, errors.Join(ErrSerialize, err)
	}
	return b, nil
}

// Deserialize decodes a BSON document produced by Serialize.
func (BSON) Deserialize(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, ErrDeserialize
	}

	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(b)))
	dec.DefaultDocumentM()

	var doc bson.M
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrDeserialize, err)
	}

	return normalizeMap(doc), nil
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch val := v.(type) {
	case bson.M:
		return normalizeMap(val)
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case bson.Binary:
		if val.Subtype == 0 {
			return val.Data
		}
		return val
	case int32:
		return int(val)
	default:
		return v
	}
}
