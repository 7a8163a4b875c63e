package serializer

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"
)

// Scalars and their slices are registered by encoding/gob itself.
func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register([]map[string]any{})
	gob.Register(map[string]string{})
	gob.Register(map[string]int{})
	gob.Register(map[string]int64{})
	gob.Register(map[string]uint64{})
	gob.Register(map[string]float64{})
	gob.Register(map[string]bool{})
	gob.Register(map[string][]string{})
	gob.Register(map[string]time.Time{})
	gob.Register(map[int]string{})
	gob.Register(map[int64]string{})
	gob.Register(time.Time{})
	gob.Register([]time.Time{})
	gob.Register(time.Duration(0))
}

// Gob serializes session data with encoding/gob.
type Gob struct{}

// Serialize encodes data. A nil map is encoded as an empty one.
func (Gob) Serialize(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, errors.Join(ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes b. Input that is not a gob encoded map yields ErrDeserialize.
func (Gob) Deserialize(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, ErrDeserialize
	}

	var data map[string]any
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&data); err != nil {
		return nil, errors.Join(ErrDeserialize, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
