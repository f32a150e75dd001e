package codec

import (
	"fmt"
	"math"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// Number is the set of Go types the typed accessors accept.
type Number interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 | float32 | float64
}

type numberInfo struct {
	name  string
	size  int
	float bool
}

func infoOf[T Number]() numberInfo {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return numberInfo{"uint8", 1, false}
	case int8:
		return numberInfo{"int8", 1, false}
	case uint16:
		return numberInfo{"uint16", 2, false}
	case int16:
		return numberInfo{"int16", 2, false}
	case uint32:
		return numberInfo{"uint32", 4, false}
	case int32:
		return numberInfo{"int32", 4, false}
	case uint64:
		return numberInfo{"uint64", 8, false}
	case int64:
		return numberInfo{"int64", 8, false}
	case float32:
		return numberInfo{"float32", 4, true}
	default:
		return numberInfo{"float64", 8, true}
	}
}

// checkType rejects a Go type whose width differs from the field's storage
// unit, and any float against a bit-field.
func checkType[T Number](structName string, f schema.Field) error {
	info := infoOf[T]()
	if info.size == f.Size && !(info.float && f.Bitfield) {
		return nil
	}
	detail := fmt.Sprintf("%d-byte value for a %d-byte field", info.size, f.Size)
	if info.float && f.Bitfield {
		detail = fmt.Sprintf("float value for a %d-bit bit-field", f.Width)
	}
	return errors.TypeMismatch(path(structName, f.Name), info.name, f.Type, detail)
}

// Get reads field name as T. Bit-fields come back unsigned, converted to T.
func Get[T Number](l *schema.Layout, name string, buf []byte) (T, error) {
	var out T
	f, err := lookup(l, name)
	if err != nil {
		return out, err
	}
	if err := checkType[T](l.Name, f); err != nil {
		return out, err
	}
	bits, err := ReadField(l.Name, f, buf)
	if err != nil {
		return out, err
	}
	return fromBits[T](bits), nil
}

// Set writes v into field name after checking T against the declared type.
func Set[T Number](l *schema.Layout, name string, v T, buf []byte) error {
	f, err := lookup(l, name)
	if err != nil {
		return err
	}
	if err := checkType[T](l.Name, f); err != nil {
		return err
	}
	return WriteField(l.Name, f, toBits(v), buf)
}

func toBits[T Number](v T) uint64 {
	switch x := any(v).(type) {
	case uint8:
		return uint64(x)
	case int8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case int16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case int32:
		return uint64(x)
	case uint64:
		return x
	case int64:
		return uint64(x)
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	}
	return 0
}

func fromBits[T Number](bits uint64) T {
	var out T
	switch p := any(&out).(type) {
	case *uint8:
		*p = uint8(bits)
	case *int8:
		*p = int8(bits)
	case *uint16:
		*p = uint16(bits)
	case *int16:
		*p = int16(bits)
	case *uint32:
		*p = uint32(bits)
	case *int32:
		*p = int32(bits)
	case *uint64:
		*p = bits
	case *int64:
		*p = int64(bits)
	case *float32:
		*p = math.Float32frombits(uint32(bits))
	case *float64:
		*p = math.Float64frombits(bits)
	}
	return out
}
