// Package bitstruct derives the byte and bit layout of a C struct
// declaration given as text and reads or writes its fields in a raw buffer.
//
// The input is a subset of C:
//
//	struct NAME { FIELD; FIELD; ... };
//
// where each FIELD is "TYPE NAME", "TYPE NAME : WIDTH" or "TYPE : WIDTH"
// (an anonymous bit-field). Comments of both forms may appear anywhere.
// TYPE is one of uint8_t, int8_t, char, uint16_t, int16_t, short, uint32_t,
// int32_t, float, uint64_t, int64_t and double.
//
// # Architecture Overview
//
//	bitstruct/           One-shot API; every call re-parses the text
//	├── schema/          Parsing and layout computation
//	├── codec/           Raw and typed field access on buffers and memory
//	├── cache/           Layout-once cache keyed by text fingerprint
//	├── catalog/         YAML catalog of named struct declarations
//	├── snapshot/        CBOR capture and restore of field values
//	├── guestmem/        wazero linear memory adapter
//	├── witgen/          WIT record export
//	├── errors/          Structured error types
//	└── cmd/structtool/  Command line tool
//
// # Quick Start
//
//	const reg = `struct reg { uint8_t mode:3; uint8_t level:5; uint16_t count; };`
//
//	buf := make([]byte, bitstruct.MustSizeOf(reg))
//	if err := bitstruct.WriteField(reg, "level", 17, buf); err != nil {
//	    log.Fatal(err)
//	}
//	level, err := bitstruct.ReadField(reg, "level", buf)
//
// The functions in this package trade throughput for simplicity. For
// repeated access parse once and use package codec, or let package cache
// hold the layout:
//
//	l, err := schema.Parse(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = codec.Write(l, "level", 17, buf)
//
// # Layout Rules
//
// Plain fields are packed with no padding. Consecutive bit-fields share a
// storage unit of their declared type until the next one does not fit. See
// package schema for the two layout modes and their differences.
//
// # Error Handling
//
// All errors are *errors.Error values carrying a phase and kind:
//
//	if errors.Is(err, bserrors.ErrUnknownType) {
//	    // declared type is not a known primitive
//	}
package bitstruct
