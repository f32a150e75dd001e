package schema

import (
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema/internal/prim"
)

// engine assigns offsets to classified declarations in a single pass.
//
// byteCursor is the next free byte. bitCursor counts bits already taken in
// the storage unit that starts at byteCursor, and unitSize is that unit's
// size in bytes (0 when no unit is open). unitType is the declared type of
// the bit-field that opened the unit.
type engine struct {
	mode       Mode
	structName string

	byteCursor int
	bitCursor  int
	unitSize   int
	unitType   string
	extent     int

	fields []Field
}

func newEngine(structName string, mode Mode) *engine {
	return &engine{mode: mode, structName: structName}
}

// closeUnit finishes the open bit-field unit, if any.
func (e *engine) closeUnit() {
	if e.bitCursor > 0 {
		e.byteCursor += e.unitSize
	}
	e.bitCursor = 0
	e.unitSize = 0
	e.unitType = ""
}

func (e *engine) place(d Decl) error {
	typ, ok := prim.Lookup(d.Type)
	if !ok {
		return errors.UnknownType(e.path(d), d.Type)
	}

	if !d.Bitfield {
		if e.mode == ModePredictable {
			e.closeUnit()
		}
		e.emit(d, Field{
			Type:       d.Type,
			Name:       d.Name,
			ByteOffset: e.byteCursor,
			Size:       typ.Size,
		})
		e.byteCursor += typ.Size
		e.bitCursor = 0
		e.unitSize = 0
		e.unitType = ""
		return nil
	}

	unitBits := typ.Bits()
	if d.Width > unitBits {
		return errors.InvalidWidth(e.path(d), d.Type, d.Width, unitBits)
	}

	if e.mode == ModePredictable && e.bitCursor > 0 {
		if d.Type != e.unitType || d.Width == 0 {
			e.closeUnit()
		}
	}

	// In compat mode the test below measures the open unit's bits against
	// the new field's storage size even when the types differ.
	if e.bitCursor+d.Width > unitBits {
		e.closeUnit()
	}

	e.emit(d, Field{
		Type:       d.Type,
		Name:       d.Name,
		Width:      d.Width,
		ByteOffset: e.byteCursor,
		BitOffset:  e.bitCursor,
		Size:       typ.Size,
		Bitfield:   true,
	})

	e.bitCursor += d.Width
	e.unitSize = typ.Size
	e.unitType = d.Type
	if e.bitCursor == unitBits {
		e.byteCursor += typ.Size
		e.bitCursor = 0
		e.unitSize = 0
		e.unitType = ""
	}
	return nil
}

// emit records f, skipping anonymous declarations whose space is still
// accounted for by the cursors. A zero-width bit-field occupies no unit.
func (e *engine) emit(d Decl, f Field) {
	if end := f.ByteOffset + f.Size; end > e.extent && !(f.Bitfield && f.Width == 0) {
		e.extent = end
	}
	if d.Anonymous {
		return
	}
	e.fields = append(e.fields, f)
}

// size is byteCursor plus one byte for a bit run still open at the end,
// whatever that run's storage size.
func (e *engine) size() int {
	if e.bitCursor > 0 {
		return e.byteCursor + 1
	}
	return e.byteCursor
}

func (e *engine) path(d Decl) []string {
	path := make([]string, 0, 2)
	if e.structName != "" {
		path = append(path, e.structName)
	}
	if d.Name != "" {
		path = append(path, d.Name)
	}
	return path
}
