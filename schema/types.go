package schema

import (
	"sort"

	"github.com/wippyai/bitstruct/schema/internal/prim"
)

// Primitive describes a type token a struct text may declare.
type Primitive struct {
	Name   string
	Size   int
	Signed bool
	Float  bool
}

// LookupType returns the primitive registered under name.
func LookupType(name string) (Primitive, bool) {
	t, ok := prim.Lookup(name)
	if !ok {
		return Primitive{}, false
	}
	return Primitive{
		Name:   t.Name,
		Size:   t.Size,
		Signed: t.Kind == prim.KindSigned,
		Float:  t.Kind == prim.KindFloat,
	}, true
}

// Types returns every primitive type token, sorted by size then name.
func Types() []string {
	names := prim.Names()
	sort.Slice(names, func(i, j int) bool {
		si, sj := prim.Size(names[i]), prim.Size(names[j])
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})
	return names
}
