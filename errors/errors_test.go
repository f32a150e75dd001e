package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseAccess,
				Kind:   KindTypeMismatch,
				Path:   []string{"status", "flags"},
				GoType: "uint32",
				CType:  "uint8_t",
				Detail: "width differs",
			},
			contains: []string{"[access]", "type_mismatch", "status.flags", "uint32", "uint8_t", "width differs"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseParse,
				Kind:  KindBodyNotFound,
			},
			contains: []string{"[parse]", "struct_body_not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidInput,
				Detail: "catalog",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_input", "catalog", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Load("schemas.yaml", cause)

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseAccess,
		Kind:  KindFieldNotFound,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindFieldNotFound}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseParse, Kind: KindFieldNotFound}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseAccess, Kind: KindBufferTooSmall}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrFieldNotFound) {
		t.Error("errors.Is should match the phase-less sentinel")
	}
	if errors.Is(err, ErrUnknownType) {
		t.Error("errors.Is should not match another sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseAccess, KindTypeMismatch).
		Path("reg", "mode").
		GoType("float32").
		CType("uint8_t").
		Value(42).
		Cause(cause).
		Detail("expected %d bytes, got %d", 1, 4).
		Build()

	if err.Phase != PhaseAccess {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseAccess)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "reg" || err.Path[1] != "mode" {
		t.Errorf("Path = %v, want [reg mode]", err.Path)
	}
	if err.GoType != "float32" {
		t.Errorf("GoType = %v, want 'float32'", err.GoType)
	}
	if err.CType != "uint8_t" {
		t.Errorf("CType = %v, want 'uint8_t'", err.CType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected 1 bytes, got 4" {
		t.Errorf("Detail = %v, want 'expected 1 bytes, got 4'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnknownType", func(t *testing.T) {
		err := UnknownType([]string{"s", "x"}, "weirdtype")
		if err.Kind != KindUnknownType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownType)
		}
		if err.Value != "weirdtype" {
			t.Errorf("Value = %v, want weirdtype", err.Value)
		}
	})

	t.Run("UnparsableField", func(t *testing.T) {
		err := UnparsableField(nil, "garbage")
		if err.Kind != KindUnparsableField || err.Phase != PhaseParse {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), "garbage") {
			t.Errorf("message %q should quote the line", err.Error())
		}
	})

	t.Run("BufferTooSmall", func(t *testing.T) {
		err := BufferTooSmall([]string{"x"}, 8, 4)
		if err.Kind != KindBufferTooSmall {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBufferTooSmall)
		}
		if err.Value != 8 {
			t.Errorf("Value = %v, want 8", err.Value)
		}
	})

	t.Run("InvalidWidth", func(t *testing.T) {
		err := InvalidWidth([]string{"a"}, "uint8_t", 9, 8)
		if !strings.Contains(err.Detail, "9") || !strings.Contains(err.Detail, "8") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch([]string{"reg", "flags"}, "uint16", "uint8_t", "2-byte value for a 1-byte field")
		if err.Phase != PhaseAccess || err.Kind != KindTypeMismatch {
			t.Errorf("Phase/Kind = %v/%v", err.Phase, err.Kind)
		}
		want := "[access] type_mismatch at reg.flags: Go type uint16, C type uint8_t - 2-byte value for a 1-byte field"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("FieldNotFound", func(t *testing.T) {
		err := FieldNotFound([]string{"s"}, "missing")
		if err.Kind != KindFieldNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindFieldNotFound)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseLoad, "schema", "status")
		if err.Kind != KindDuplicate || err.Phase != PhaseLoad {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})
}
