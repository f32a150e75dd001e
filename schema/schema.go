package schema

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"go.uber.org/zap"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema/internal/token"
)

// Mode selects the bit-field packing arithmetic.
type Mode uint8

const (
	// ModePredictable closes the open storage unit before a bit-field whose
	// declared type differs from the one that opened it, before any plain
	// field and at a zero-width bit-field.
	ModePredictable Mode = iota

	// ModeCompat keeps the legacy arithmetic: the overflow test for a
	// bit-field uses its own storage size against whatever bits the open
	// unit already holds, and a plain field starts at the open unit's first
	// byte.
	ModeCompat
)

func (m Mode) String() string {
	switch m {
	case ModePredictable:
		return "predictable"
	case ModeCompat:
		return "compat"
	}
	return "unknown"
}

// Options configures parsing. A nil *Options means strict, predictable.
type Options struct {
	// Lenient skips declarations no grammar accepts and records a
	// Diagnostic instead of failing.
	Lenient bool

	// Mode selects the packing arithmetic.
	Mode Mode
}

// Field is the placement of one named field.
type Field struct {
	Type       string
	Name       string
	Width      int // bits, 0 for plain fields
	ByteOffset int
	BitOffset  int // within the storage unit starting at ByteOffset
	Size       int // storage unit size in bytes
	Bitfield   bool
}

// End returns the first byte past the field's storage unit.
func (f Field) End() int {
	return f.ByteOffset + f.Size
}

// Mask returns the unshifted bit mask of a bit-field.
func (f Field) Mask() uint64 {
	if f.Width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << f.Width) - 1
}

// Diagnostic is a non-fatal note produced while parsing.
type Diagnostic struct {
	Kind errors.Kind
	Text string
}

func (d Diagnostic) String() string {
	return string(d.Kind) + ": " + d.Text
}

// Layout is the derived memory layout of one struct text. It is immutable
// once returned and safe for concurrent use.
type Layout struct {
	Name   string
	Fields []Field

	// Size is the total size: every closed unit plus one byte for a bit run
	// left open at the end.
	Size int

	// Extent is the first byte past the furthest storage unit, which can
	// exceed Size when the final bit run's unit is wider than one byte.
	Extent int

	Mode        Mode
	Diagnostics []Diagnostic
}

// Lookup returns the first declared field called name.
func (l *Layout) Lookup(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldType returns the declared type of name, or "" if absent.
func (l *Layout) FieldType(name string) string {
	f, ok := l.Lookup(name)
	if !ok {
		return ""
	}
	return f.Type
}

// Describe renders a human-readable dump of the layout.
func (l *Layout) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Struct: %s (total size: %d bytes)\n", l.Name, l.Size)
	for _, f := range l.Fields {
		b.WriteString("  ")
		b.WriteString(f.Type)
		b.WriteByte(' ')
		b.WriteString(f.Name)
		if f.Bitfield {
			fmt.Fprintf(&b, " : %d", f.Width)
		}
		fmt.Fprintf(&b, " | offset: %d", f.ByteOffset)
		if f.Bitfield {
			fmt.Fprintf(&b, ", bit offset: %d", f.BitOffset)
		}
		fmt.Fprintf(&b, ", size: %d bytes\n", f.Size)
	}
	return b.String()
}

// Parse derives the layout of a struct text with default options.
func Parse(text string) (*Layout, error) {
	return ParseWithOptions(text, nil)
}

// ParseWithOptions derives the layout of a struct text. No partial layout is
// returned on error.
func ParseWithOptions(text string, opts *Options) (*Layout, error) {
	if opts == nil {
		opts = &Options{}
	}

	src, ok := token.Body(token.Normalize(text))
	if !ok {
		return nil, errors.BodyNotFound("no balanced {...} block in struct text")
	}

	l := &Layout{Name: src.Name, Mode: opts.Mode}
	eng := newEngine(src.Name, opts.Mode)
	seen := mapset.NewThreadUnsafeSet()

	for _, line := range token.Split(src.Body) {
		d := Classify(line)
		if d.Form == FormUnparsable {
			if !opts.Lenient {
				return nil, errors.UnparsableField(pathOf(src.Name), line)
			}
			Logger().Warn("skipping unparsable field declaration",
				zap.String("struct", src.Name),
				zap.String("declaration", line))
			l.Diagnostics = append(l.Diagnostics, Diagnostic{
				Kind: errors.KindUnparsableField,
				Text: line,
			})
			continue
		}

		if !d.Anonymous && !seen.Add(d.Name) {
			l.Diagnostics = append(l.Diagnostics, Diagnostic{
				Kind: errors.KindDuplicate,
				Text: d.Name,
			})
		}

		if err := eng.place(d); err != nil {
			return nil, err
		}
	}

	l.Fields = eng.fields
	l.Size = eng.size()
	l.Extent = eng.extent
	if l.Size > l.Extent {
		l.Extent = l.Size
	}

	Logger().Debug("parsed struct layout",
		zap.String("struct", l.Name),
		zap.Int("fields", len(l.Fields)),
		zap.Int("size", l.Size),
		zap.Stringer("mode", l.Mode))

	return l, nil
}

func pathOf(structName string) []string {
	if structName == "" {
		return nil
	}
	return []string{structName}
}
