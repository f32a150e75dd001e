// Package snapshot captures the field values of a struct instance into a
// deterministic CBOR document and applies such documents back onto buffers.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Field is one captured field value.
type Field struct {
	Name  string `cbor:"1,keyasint"`
	Type  string `cbor:"2,keyasint"`
	Value uint64 `cbor:"3,keyasint"`
	Width int    `cbor:"4,keyasint,omitempty"`
}

// Snapshot is the captured state of one struct instance.
type Snapshot struct {
	Struct string  `cbor:"1,keyasint"`
	Mode   string  `cbor:"2,keyasint"`
	Size   int     `cbor:"3,keyasint"`
	Fields []Field `cbor:"4,keyasint"`

	// Raw holds the instance bytes up to the layout's extent.
	Raw []byte `cbor:"5,keyasint,omitempty"`
}

// Capture reads every named field of l from buf.
func Capture(l *schema.Layout, buf []byte) (*Snapshot, error) {
	values, err := codec.ReadAll(l, buf)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		Struct: l.Name,
		Mode:   l.Mode.String(),
		Size:   l.Size,
		Fields: make([]Field, 0, len(values)),
	}
	for _, v := range values {
		s.Fields = append(s.Fields, Field{
			Name:  v.Field.Name,
			Type:  v.Field.Type,
			Value: v.Bits,
			Width: v.Field.Width,
		})
	}
	if len(buf) >= l.Extent {
		s.Raw = append([]byte(nil), buf[:l.Extent]...)
	}
	return s, nil
}

// CaptureView reads every named field of the instance v points at.
func CaptureView(v *codec.View) (*Snapshot, error) {
	buf, err := v.Snapshot()
	if err != nil {
		return nil, err
	}
	return Capture(v.Layout(), buf)
}

// Apply writes every field value of s into buf. Either all fields are
// written or, on error, none are.
func Apply(l *schema.Layout, s *Snapshot, buf []byte) error {
	if s.Struct != l.Name {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Path(l.Name).
			Value(s.Struct).
			Detail("snapshot of struct %q applied to %q", s.Struct, l.Name).
			Build()
	}

	fields := make([]schema.Field, len(s.Fields))
	for i, sf := range s.Fields {
		f, ok := l.Lookup(sf.Name)
		if !ok {
			return errors.FieldNotFound([]string{l.Name}, sf.Name)
		}
		if f.End() > len(buf) {
			return errors.BufferTooSmall([]string{l.Name, f.Name}, f.End(), len(buf))
		}
		fields[i] = f
	}

	for i, f := range fields {
		if err := codec.WriteField(l.Name, f, s.Fields[i].Value, buf); err != nil {
			return err
		}
	}
	return nil
}

// Encode serializes s as canonical CBOR.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseAccess, errors.KindInvalidInput, err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a CBOR snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, errors.Load("failed to decode snapshot", err)
	}
	return &s, nil
}
