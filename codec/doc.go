// Package codec reads and writes individual fields of a struct instance
// held in a raw byte buffer, using a layout derived by package schema.
//
// # Raw Access
//
// Read and Write move raw bits. A plain field copies exactly its storage
// size in little-endian order; the declared type is not checked against the
// value. A bit-field loads its whole storage unit, clears its bit range,
// ORs in the masked value and stores the unit back:
//
//	mask := 1<<width - 1
//	unit = unit&^(mask<<bitOffset) | (value&mask)<<bitOffset
//
// Every access is bounds checked against the buffer and fails with a
// buffer_too_small error rather than touching memory past its end.
//
// # Typed Access
//
// Get and Set wrap the raw operations for a fixed set of Go numeric types
// and return a type_mismatch error when the Go type's width differs from
// the field's storage size, or when a float is used with a bit-field.
//
// # Linear Memory
//
// View applies the same operations to a struct instance living in a
// Memory, such as WebAssembly linear memory.
//
// Buffers are owned by the caller; concurrent access to the same buffer
// must be serialized by the caller.
package codec
