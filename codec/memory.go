package codec

import (
	"math"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// Memory is linear memory addressed by 32-bit offsets, such as a
// WebAssembly instance's memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}

// Sizer is implemented by memories that know their current size. A View
// over a Sizer rejects out-of-range accesses without touching memory.
type Sizer interface {
	Size() uint32
}

// View accesses one struct instance stored in Memory at Base.
type View struct {
	mem    Memory
	layout *schema.Layout
	base   uint32
}

// NewView binds l to the struct instance at base in mem.
func NewView(mem Memory, base uint32, l *schema.Layout) *View {
	return &View{mem: mem, layout: l, base: base}
}

// Layout returns the bound layout.
func (v *View) Layout() *schema.Layout {
	return v.layout
}

// Read returns the raw bits of field name.
func (v *View) Read(name string) (uint64, error) {
	f, err := lookup(v.layout, name)
	if err != nil {
		return 0, err
	}
	unit, err := v.load(f)
	if err != nil {
		return 0, err
	}
	return ReadField(v.layout.Name, rebase(f), unit)
}

// Write stores bits into field name with a read-modify-write of its
// storage unit.
func (v *View) Write(name string, bits uint64) error {
	f, err := lookup(v.layout, name)
	if err != nil {
		return err
	}
	unit, err := v.load(f)
	if err != nil {
		return err
	}
	if err := WriteField(v.layout.Name, rebase(f), bits, unit); err != nil {
		return err
	}
	if err := v.mem.Write(v.base+uint32(f.ByteOffset), unit); err != nil {
		return errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Path(path(v.layout.Name, f.Name)...).
			Detail("write %d bytes at %d", f.Size, v.base+uint32(f.ByteOffset)).
			Cause(err).
			Build()
	}
	return nil
}

// Snapshot copies the whole struct instance out of memory.
func (v *View) Snapshot() ([]byte, error) {
	if err := v.bounds("", uint64(v.base), v.layout.Extent); err != nil {
		return nil, err
	}
	data, err := v.mem.Read(v.base, uint32(v.layout.Extent))
	if err != nil {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Path(path(v.layout.Name, "")...).
			Detail("read %d bytes at %d", v.layout.Extent, v.base).
			Cause(err).
			Build()
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// load copies f's storage unit out of memory.
func (v *View) load(f schema.Field) ([]byte, error) {
	start := uint64(v.base) + uint64(f.ByteOffset)
	if err := v.bounds(f.Name, start, f.Size); err != nil {
		return nil, err
	}
	data, err := v.mem.Read(uint32(start), uint32(f.Size))
	if err != nil {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Path(path(v.layout.Name, f.Name)...).
			Detail("read %d bytes at %d", f.Size, start).
			Cause(err).
			Build()
	}
	unit := make([]byte, f.Size)
	copy(unit, data)
	return unit, nil
}

// bounds rejects [start, start+length) when it leaves the 32-bit address
// space or, for a Sizer, the memory's current size.
func (v *View) bounds(field string, start uint64, length int) error {
	limit := uint64(math.MaxUint32) + 1
	if s, ok := v.mem.(Sizer); ok {
		limit = uint64(s.Size())
	}
	if start+uint64(length) > limit {
		return errors.OutOfBounds(errors.PhaseAccess, path(v.layout.Name, field), start, uint64(length))
	}
	return nil
}

// rebase moves f to offset zero so it addresses a copied storage unit.
func rebase(f schema.Field) schema.Field {
	f.ByteOffset = 0
	return f
}
