package bitstruct

import (
	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/schema"
)

// Memory represents linear memory a struct instance can live in
type Memory = codec.Memory

// MemorySizer provides the current size of linear memory in bytes. Views
// over a MemorySizer bounds-check accesses before reading memory.
type MemorySizer = codec.Sizer

// Parse derives the layout of text with default options.
func Parse(text string) (*schema.Layout, error) {
	return schema.Parse(text)
}

// SizeOf returns the total size of the struct declared in text.
func SizeOf(text string) (int, error) {
	l, err := schema.Parse(text)
	if err != nil {
		return 0, err
	}
	return l.Size, nil
}

// MustSizeOf is like SizeOf but panics if text does not parse.
func MustSizeOf(text string) int {
	n, err := SizeOf(text)
	if err != nil {
		panic(err)
	}
	return n
}

// WriteField stores bits into the first field called name. The value is
// not checked against the declared type; see codec.Set for a checked form.
func WriteField(text, name string, bits uint64, buf []byte) error {
	l, err := schema.Parse(text)
	if err != nil {
		return err
	}
	return codec.Write(l, name, bits, buf)
}

// ReadField returns the raw bits of the first field called name.
func ReadField(text, name string, buf []byte) (uint64, error) {
	l, err := schema.Parse(text)
	if err != nil {
		return 0, err
	}
	return codec.Read(l, name, buf)
}

// FieldType returns the declared type of field name, or "" when the field
// is absent or text does not parse.
func FieldType(text, name string) string {
	l, err := schema.Parse(text)
	if err != nil {
		return ""
	}
	return l.FieldType(name)
}

// Describe renders the layout of text for humans.
func Describe(text string) (string, error) {
	l, err := schema.Parse(text)
	if err != nil {
		return "", err
	}
	return l.Describe(), nil
}
