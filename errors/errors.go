package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse  Phase = "parse"  // struct text to declarations
	PhaseLayout Phase = "layout" // declarations to offsets
	PhaseAccess Phase = "access" // field read/write against a buffer
	PhaseLoad   Phase = "load"   // catalog and snapshot loading
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownType     Kind = "unknown_type"
	KindBodyNotFound    Kind = "struct_body_not_found"
	KindUnparsableField Kind = "unparsable_field"
	KindFieldNotFound   Kind = "field_not_found"
	KindBufferTooSmall  Kind = "buffer_too_small"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidWidth    Kind = "invalid_width"
	KindInvalidInput    Kind = "invalid_input"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindDuplicate       Kind = "duplicate"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	CType  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.CType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.CType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", C type ")
			b.WriteString(e.CType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("C type ")
			b.WriteString(e.CType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.CType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// CType sets the declared C type name
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Sentinels for errors.Is checks that do not care about the phase.
var (
	ErrUnknownType     = &Error{Kind: KindUnknownType}
	ErrBodyNotFound    = &Error{Kind: KindBodyNotFound}
	ErrUnparsableField = &Error{Kind: KindUnparsableField}
	ErrFieldNotFound   = &Error{Kind: KindFieldNotFound}
	ErrBufferTooSmall  = &Error{Kind: KindBufferTooSmall}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrInvalidWidth    = &Error{Kind: KindInvalidWidth}
)

// Convenience constructors for common error patterns

// UnknownType creates an error for a type token missing from the primitive table
func UnknownType(path []string, token string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindUnknownType,
		Path:   path,
		CType:  token,
		Detail: fmt.Sprintf("unknown type %q", token),
		Value:  token,
	}
}

// BodyNotFound creates an error for struct text without a balanced {...} block
func BodyNotFound(detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindBodyNotFound,
		Detail: detail,
	}
}

// UnparsableField creates an error for a declaration no grammar accepts
func UnparsableField(path []string, line string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnparsableField,
		Path:   path,
		Detail: fmt.Sprintf("cannot parse field declaration %q", line),
		Value:  line,
	}
}

// FieldNotFound creates an error for a field name absent from a layout
func FieldNotFound(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindFieldNotFound,
		Path:   path,
		Detail: fmt.Sprintf("field %q not found", name),
		Value:  name,
	}
}

// BufferTooSmall creates an error for an access range past the end of a buffer
func BufferTooSmall(path []string, end, length int) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindBufferTooSmall,
		Path:   path,
		Detail: fmt.Sprintf("access ends at byte %d, buffer has %d", end, length),
		Value:  end,
	}
}

// TypeMismatch creates an error for a Go value that does not fit a C field
func TypeMismatch(path []string, goType, cType, detail string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		CType:  cType,
		Detail: detail,
	}
}

// InvalidWidth creates an error for a bit-field wider than its storage unit
func InvalidWidth(path []string, cType string, width, maxBits int) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindInvalidWidth,
		Path:   path,
		CType:  cType,
		Detail: fmt.Sprintf("bit width %d exceeds %d-bit storage unit", width, maxBits),
		Value:  width,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("range at offset %d (length %d) out of bounds", offset, length),
		Value:  offset,
	}
}

// Duplicate creates an error for a name declared more than once
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
		Value:  name,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
