// Package serializer converts session data to and from the opaque byte
// strings persisted by session handlers.
//
// Two implementations ship with the package:
//
//   - Gob (default) – encoding/gob based, binary safe. Strings and byte slices
//     holding invalid UTF-8 round-trip unchanged.
//   - BSON – mongo-driver bson documents. Portable between languages; nested
//     documents and arrays are normalised back to map[string]any and []any.
//
// Custom types stored in session data must be registered with gob.Register
// before they are serialized with Gob.
package serializer
