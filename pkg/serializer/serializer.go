package serializer

// Serializer converts session data to bytes and back.
// Deserialize(Serialize(v)) must equal v for every value the implementation supports.
type Serializer interface {
	Serialize(data map[string]any) ([]byte, error)
	Deserialize(b []byte) (map[string]any, error)
}

// Default returns the serializer used when none is configured.
func Default() Serializer {
	return Gob{}
}
