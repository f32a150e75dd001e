// Package schema derives byte and bit layouts from textual C struct
// declarations.
//
// The struct text is the schema: it is normalized (comments removed,
// whitespace collapsed), its body is split into declarations, each
// declaration is classified, and the layout engine assigns offsets in
// declaration order.
//
// # Grammar
//
//	struct NAME { FIELD; FIELD; ... };
//
//	FIELD := TYPE NAME | TYPE NAME : WIDTH | TYPE : WIDTH
//
// TYPE must be one of uint8_t, int8_t, char, uint16_t, int16_t, short,
// uint32_t, int32_t, float, uint64_t, int64_t or double. Trailing tokens
// after TYPE NAME (array suffixes, attributes) are ignored.
//
// # Layout Rules
//
//   - Plain fields are packed back to back with no alignment padding.
//   - Consecutive bit-fields share a storage unit sized by their declared
//     type until the next one no longer fits.
//   - Anonymous bit-fields reserve bits but are not listed in Fields.
//   - The total size adds a single byte for a bit run left open at the end.
//
// See Mode for the two packing variants.
//
// # Usage
//
//	l, err := schema.Parse(text)
//	// l.Size, l.Fields, l.Lookup("flags")
//
// Layouts are immutable; parse once and reuse them with package codec.
package schema
