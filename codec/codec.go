package codec

import (
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// Value is one field's raw bits as read from a buffer.
type Value struct {
	Field schema.Field
	Bits  uint64
}

// Alloc returns a zeroed buffer large enough for every storage unit of l.
func Alloc(l *schema.Layout) []byte {
	return make([]byte, l.Extent)
}

// Read returns the raw bits of the first field called name. Plain fields
// yield their Size bytes zero-extended; bit-fields yield the masked value.
func Read(l *schema.Layout, name string, buf []byte) (uint64, error) {
	f, err := lookup(l, name)
	if err != nil {
		return 0, err
	}
	return ReadField(l.Name, f, buf)
}

// Write stores bits into the first field called name. Plain fields take the
// low Size bytes of bits; bit-fields take bits masked to their width. The
// buffer is left untouched on error.
func Write(l *schema.Layout, name string, bits uint64, buf []byte) error {
	f, err := lookup(l, name)
	if err != nil {
		return err
	}
	return WriteField(l.Name, f, bits, buf)
}

// ReadAll returns every named field of l in declaration order.
func ReadAll(l *schema.Layout, buf []byte) ([]Value, error) {
	values := make([]Value, 0, len(l.Fields))
	for _, f := range l.Fields {
		bits, err := ReadField(l.Name, f, buf)
		if err != nil {
			return nil, err
		}
		values = append(values, Value{Field: f, Bits: bits})
	}
	return values, nil
}

// ReadField reads f directly. structName only decorates errors.
func ReadField(structName string, f schema.Field, buf []byte) (uint64, error) {
	if err := checkBounds(structName, f, buf); err != nil {
		return 0, err
	}
	container := load(buf[f.ByteOffset:f.End()])
	if !f.Bitfield {
		return container, nil
	}
	return (container >> f.BitOffset) & f.Mask(), nil
}

// WriteField writes f directly. structName only decorates errors.
func WriteField(structName string, f schema.Field, bits uint64, buf []byte) error {
	if err := checkBounds(structName, f, buf); err != nil {
		return err
	}
	unit := buf[f.ByteOffset:f.End()]
	if !f.Bitfield {
		store(unit, bits)
		return nil
	}
	mask := f.Mask()
	container := load(unit)
	container &^= mask << f.BitOffset
	container |= (bits & mask) << f.BitOffset
	store(unit, container)
	return nil
}

func lookup(l *schema.Layout, name string) (schema.Field, error) {
	f, ok := l.Lookup(name)
	if !ok {
		return schema.Field{}, errors.FieldNotFound(path(l.Name, ""), name)
	}
	return f, nil
}

func checkBounds(structName string, f schema.Field, buf []byte) error {
	if f.ByteOffset < 0 || f.End() > len(buf) {
		return errors.BufferTooSmall(path(structName, f.Name), f.End(), len(buf))
	}
	return nil
}

// load reads up to eight little-endian bytes.
func load(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// store writes the low len(b) bytes of v little-endian.
func store(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

func path(structName, field string) []string {
	p := make([]string, 0, 2)
	if structName != "" {
		p = append(p, structName)
	}
	if field != "" {
		p = append(p, field)
	}
	return p
}
