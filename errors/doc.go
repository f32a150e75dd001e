// Package errors provides the structured error type shared by the bitstruct
// packages.
//
// Every error carries a Phase (parse, layout, access or load) and a Kind
// such as unknown_type or buffer_too_small, plus the struct/field path and
// the Go and C type names involved when they apply.
//
// Build one field by field:
//
//	err := errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
//		Path("reg", "status").
//		Detail("read %d bytes at %d", 4, base).
//		Cause(memErr).
//		Build()
//
// or with a constructor for the common cases:
//
//	err := errors.TypeMismatch(path, "uint16", "uint8_t", "2-byte value for a 1-byte field")
//	err := errors.InvalidWidth(path, "uint8_t", 9, 8)
//
// Match by kind with the standard library, whatever the phase:
//
//	if errors.Is(err, errors.ErrBufferTooSmall) { ... }
package errors
