// Package witgen exports struct layouts as WIT record types.
//
// Plain fields map to the WIT primitive of the same width and signedness.
// Bit-fields are read back unsigned, so a width of 1 maps to bool and any
// other width to the narrowest unsigned integer that holds it. Names are
// converted to kebab case.
package witgen

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

var keywords = mapset.NewSetFromSlice([]interface{}{
	"as", "bool", "borrow", "char", "constructor", "enum", "export", "f32",
	"f64", "flags", "from", "func", "future", "import", "include",
	"interface", "list", "option", "own", "package", "record", "resource",
	"result", "s16", "s32", "s64", "s8", "static", "stream", "string",
	"tuple", "type", "u16", "u32", "u64", "u8", "use", "variant", "with",
	"world",
})

// Record builds a record type definition for l.
func Record(l *schema.Layout) (*wit.TypeDef, error) {
	name := Name(l.Name)
	if name == "" {
		name = "anonymous-struct"
	}

	seen := mapset.NewThreadUnsafeSet()
	fields := make([]wit.Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		fieldName := Name(f.Name)
		if !seen.Add(fieldName) {
			return nil, errors.Duplicate(errors.PhaseLayout, "record field", fieldName)
		}
		t, err := fieldType(f)
		if err != nil {
			return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				Path(l.Name, f.Name).
				CType(f.Type).
				Detail("no WIT type for field").
				Cause(err).
				Build()
		}
		fields = append(fields, wit.Field{Name: fieldName, Type: t})
	}

	return &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: fields},
	}, nil
}

// Render returns WIT source declaring the record for l.
func Render(l *schema.Layout) (string, error) {
	td, err := Record(l)
	if err != nil {
		return "", err
	}
	rec := td.Kind.(*wit.Record)

	var b strings.Builder
	fmt.Fprintf(&b, "record %s {\n", ident(*td.Name))
	for _, f := range rec.Fields {
		fmt.Fprintf(&b, "    %s: %s,\n", ident(f.Name), typeName(f.Type))
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// Name converts a C identifier to kebab case: underscores become dashes
// and lower-to-upper transitions start a new word. WIT words cannot start
// with a digit, so digits join the preceding word.
func Name(s string) string {
	var b strings.Builder
	dash := false
	prevLower := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '-':
			dash = b.Len() > 0
			prevLower = false
			continue
		case c >= 'A' && c <= 'Z':
			if prevLower {
				dash = true
			}
			c += 'a' - 'A'
			prevLower = false
		default:
			prevLower = c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
		}
		if dash && !(c >= '0' && c <= '9') {
			b.WriteByte('-')
		}
		dash = false
		if b.Len() == 0 && c >= '0' && c <= '9' {
			b.WriteString("n-")
		}
		b.WriteByte(c)
	}
	return b.String()
}

func ident(name string) string {
	if keywords.Contains(name) {
		return "%" + name
	}
	return name
}

func fieldType(f schema.Field) (wit.Type, error) {
	if f.Bitfield {
		switch {
		case f.Width == 1:
			return wit.ParseType("bool")
		case f.Width <= 8:
			return wit.ParseType("u8")
		case f.Width <= 16:
			return wit.ParseType("u16")
		case f.Width <= 32:
			return wit.ParseType("u32")
		default:
			return wit.ParseType("u64")
		}
	}

	p, ok := schema.LookupType(f.Type)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", f.Type)
	}
	switch {
	case p.Float:
		return wit.ParseType(fmt.Sprintf("f%d", p.Size*8))
	case p.Signed:
		return wit.ParseType(fmt.Sprintf("s%d", p.Size*8))
	default:
		return wit.ParseType(fmt.Sprintf("u%d", p.Size*8))
	}
}

func typeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.S8:
		return "s8"
	case wit.S16:
		return "s16"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	}
	return "unknown"
}
