package token

import (
	"strings"
	"unicode"
)

type Type int

const (
	Ident Type = iota
	Number
	Colon
	Other
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case Colon:
		return "':'"
	case Other:
		return "punctuation"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Pos   int
}

// Normalize removes // and /* */ comments, replacing each with a single
// space, then collapses whitespace runs into one space and trims the ends.
// An unterminated block comment extends to the end of the input.
func Normalize(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	space := false
	emitSpace := func() {
		if b.Len() > 0 && !space {
			b.WriteByte(' ')
			space = true
		}
	}

	for i := 0; i < len(input); i++ {
		c := input[i]

		if c == '/' && i+1 < len(input) {
			switch input[i+1] {
			case '/':
				for i < len(input) && input[i] != '\n' {
					i++
				}
				emitSpace()
				continue
			case '*':
				i += 2
				for i < len(input) && !(input[i] == '*' && i+1 < len(input) && input[i+1] == '/') {
					i++
				}
				i++ // land on the closing '/'
				emitSpace()
				continue
			}
		}

		if unicode.IsSpace(rune(c)) {
			emitSpace()
			continue
		}

		b.WriteByte(c)
		space = false
	}

	return strings.TrimSpace(b.String())
}

// Source is a normalized struct text split into its name and body.
type Source struct {
	Name string
	Body string
}

// Body locates the outermost {...} block of normalized struct text. The
// name comes from "struct NAME {" or, for "typedef struct {...} NAME", from
// the identifier after the closing brace. ok is false when there is no
// opening brace or it is never balanced.
func Body(text string) (src Source, ok bool) {
	open := strings.IndexByte(text, '{')
	if open < 0 {
		return Source{}, false
	}

	depth := 0
	closing := -1
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				closing = i
			}
		}
		if closing >= 0 {
			break
		}
	}
	if closing < 0 {
		return Source{}, false
	}

	src.Body = strings.TrimSpace(text[open+1 : closing])

	header := Tokenize(text[:open])
	for i := 0; i+1 < len(header); i++ {
		if header[i].Value == "struct" && header[i+1].Type == Ident {
			src.Name = header[i+1].Value
		}
	}
	if src.Name == "" && len(header) > 0 && header[0].Value == "typedef" {
		for _, tok := range Tokenize(text[closing+1:]) {
			if tok.Type == Ident {
				src.Name = tok.Value
				break
			}
		}
	}

	return src, true
}

// Split breaks a struct body into trimmed, non-empty declarations on ';'
// outside nested braces.
func Split(body string) []string {
	var decls []string
	depth := 0
	start := 0

	flush := func(end int) {
		if d := strings.TrimSpace(body[start:end]); d != "" {
			decls = append(decls, d)
		}
	}

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ';':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(body))

	return decls
}

// Tokenize splits one declaration into identifiers, decimal numbers, colons
// and single-character punctuation. Whitespace only separates tokens.
func Tokenize(input string) []Token {
	var tokens []Token

	for i := 0; i < len(input); i++ {
		c := input[i]

		if unicode.IsSpace(rune(c)) {
			continue
		}

		if c == ':' {
			tokens = append(tokens, Token{":", Colon, i})
			continue
		}

		if isDigit(c) {
			start := i
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			tokens = append(tokens, Token{input[start:i], Number, start})
			i--
			continue
		}

		if isIdentStart(c) {
			start := i
			for i < len(input) && (isIdentStart(input[i]) || isDigit(input[i])) {
				i++
			}
			tokens = append(tokens, Token{input[start:i], Ident, start})
			i--
			continue
		}

		tokens = append(tokens, Token{string(c), Other, i})
	}

	return tokens
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
