// Package prim is the fixed table of primitive C types a struct text may
// declare. The table is built at package initialization and never written
// afterwards, so lookups need no synchronization.
package prim

type Kind uint8

const (
	KindUnsigned Kind = iota
	KindSigned
	KindFloat
)

var kindNames = [...]string{
	KindUnsigned: "unsigned",
	KindSigned:   "signed",
	KindFloat:    "float",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Type describes one primitive type token.
type Type struct {
	Name string
	Size int
	Kind Kind
}

// Bits returns the width of the type's storage unit in bits.
func (t Type) Bits() int {
	return t.Size * 8
}

var table = map[string]Type{
	"uint8_t":  {"uint8_t", 1, KindUnsigned},
	"int8_t":   {"int8_t", 1, KindSigned},
	"char":     {"char", 1, KindSigned},
	"uint16_t": {"uint16_t", 2, KindUnsigned},
	"int16_t":  {"int16_t", 2, KindSigned},
	"short":    {"short", 2, KindSigned},
	"uint32_t": {"uint32_t", 4, KindUnsigned},
	"int32_t":  {"int32_t", 4, KindSigned},
	"float":    {"float", 4, KindFloat},
	"uint64_t": {"uint64_t", 8, KindUnsigned},
	"int64_t":  {"int64_t", 8, KindSigned},
	"double":   {"double", 8, KindFloat},
}

// Lookup returns the primitive registered under name.
func Lookup(name string) (Type, bool) {
	t, ok := table[name]
	return t, ok
}

// Size returns the byte size of name, or 0 if it is not a known primitive.
func Size(name string) int {
	return table[name].Size
}

// Names returns every registered type token.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}
