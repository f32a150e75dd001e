package witgen

import (
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

func mustParse(t *testing.T, text string) *schema.Layout {
	t.Helper()
	l, err := schema.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mode", "mode"},
		{"mode_bits", "mode-bits"},
		{"RegBlock", "reg-block"},
		{"regBlock", "reg-block"},
		{"_private", "private"},
		{"trailing_", "trailing"},
		{"a__b", "a-b"},
		{"HTTP", "http"},
		{"v2", "v2"},
		{"field_2", "field2"},
		{"2d", "n-2d"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Name(tc.in); got != tc.want {
			t.Errorf("Name(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRecord(t *testing.T) {
	l := mustParse(t, `struct RegBlock {
		uint8_t  mode_bits:3;
		uint8_t  enable:1;
		int16_t  offset;
		float    gain;
		uint32_t addr:20;
		uint64_t big:40;
		char     c;
		double   ratio;
		uint16_t port;
	};`)

	td, err := Record(l)
	if err != nil {
		t.Fatal(err)
	}
	if td.Name == nil || *td.Name != "reg-block" {
		t.Fatalf("record name: %v", td.Name)
	}
	rec, ok := td.Kind.(*wit.Record)
	if !ok {
		t.Fatalf("kind: %T", td.Kind)
	}

	want := []struct {
		name string
		typ  wit.Type
	}{
		{"mode-bits", wit.U8{}},
		{"enable", wit.Bool{}},
		{"offset", wit.S16{}},
		{"gain", wit.F32{}},
		{"addr", wit.U32{}},
		{"big", wit.U64{}},
		{"c", wit.S8{}},
		{"ratio", wit.F64{}},
		{"port", wit.U16{}},
	}
	if len(rec.Fields) != len(want) {
		t.Fatalf("fields: got %d, want %d", len(rec.Fields), len(want))
	}
	for i, w := range want {
		f := rec.Fields[i]
		if f.Name != w.name || f.Type != w.typ {
			t.Errorf("field %d: got %s %T, want %s %T", i, f.Name, f.Type, w.name, w.typ)
		}
	}
}

func TestRender(t *testing.T) {
	l := mustParse(t, "struct flags_reg { uint8_t type:1; uint8_t level:7; uint32_t record; };")
	got, err := Render(l)
	if err != nil {
		t.Fatal(err)
	}
	want := "record flags-reg {\n" +
		"    %type: bool,\n" +
		"    level: u8,\n" +
		"    %record: u32,\n" +
		"}\n"
	if got != want {
		t.Errorf("Render:\n got %q\nwant %q", got, want)
	}
}

func TestRecordAnonymousStruct(t *testing.T) {
	l := mustParse(t, "struct { uint8_t a; };")
	td, err := Record(l)
	if err != nil {
		t.Fatal(err)
	}
	if *td.Name != "anonymous-struct" {
		t.Errorf("name: %s", *td.Name)
	}
}

func TestRecordDuplicateNames(t *testing.T) {
	l := mustParse(t, "struct s { uint8_t a_b; uint8_t aB; };")
	_, err := Record(l)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindDuplicate || e.Value != "a-b" {
		t.Errorf("got %v", err)
	}
	if _, err := Render(l); err == nil {
		t.Error("Render: expected error")
	}
}
