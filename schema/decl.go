package schema

import (
	"strconv"

	"github.com/wippyai/bitstruct/schema/internal/token"
)

// Form tags which declaration grammar matched.
type Form uint8

const (
	FormUnparsable Form = iota
	FormPlain
	FormNamedBitfield
	FormAnonymousBitfield
)

var formNames = [...]string{
	FormUnparsable:        "unparsable",
	FormPlain:             "plain",
	FormNamedBitfield:     "bitfield",
	FormAnonymousBitfield: "anonymous bitfield",
}

func (f Form) String() string {
	if int(f) < len(formNames) {
		return formNames[f]
	}
	return "unknown"
}

// Decl is one classified field declaration, in declaration order.
type Decl struct {
	Text      string
	Type      string
	Name      string
	Width     int
	Form      Form
	Bitfield  bool
	Anonymous bool
}

// Classify matches a single declaration against the supported grammars,
// first match wins:
//
//	TYPE NAME : WIDTH    named bit-field
//	TYPE : WIDTH         anonymous bit-field
//	TYPE NAME            plain field
//	TYPE NAME ...        plain field, trailing tokens ignored
//
// Anything else is FormUnparsable.
func Classify(text string) Decl {
	d := Decl{Text: text}
	toks := token.Tokenize(text)

	is := func(types ...token.Type) bool {
		if len(toks) < len(types) {
			return false
		}
		for i, typ := range types {
			if toks[i].Type != typ {
				return false
			}
		}
		return true
	}

	switch {
	case len(toks) == 4 && is(token.Ident, token.Ident, token.Colon, token.Number):
		width, ok := parseWidth(toks[3].Value)
		if !ok {
			return d
		}
		d.Type, d.Name, d.Width = toks[0].Value, toks[1].Value, width
		d.Form, d.Bitfield = FormNamedBitfield, true

	case len(toks) == 3 && is(token.Ident, token.Colon, token.Number):
		width, ok := parseWidth(toks[2].Value)
		if !ok {
			return d
		}
		d.Type, d.Width = toks[0].Value, width
		d.Form, d.Bitfield, d.Anonymous = FormAnonymousBitfield, true, true

	case len(toks) == 2 && is(token.Ident, token.Ident):
		d.Type, d.Name = toks[0].Value, toks[1].Value
		d.Form = FormPlain

	case is(token.Ident, token.Ident):
		d.Type, d.Name = toks[0].Value, toks[1].Value
		d.Form = FormPlain
	}

	return d
}

func parseWidth(s string) (int, bool) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
