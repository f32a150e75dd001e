package codec

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

func mustLayout(t *testing.T, text string) *schema.Layout {
	t.Helper()
	l, err := schema.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return l
}

func TestBitfieldRoundTrip(t *testing.T) {
	l := mustLayout(t, `struct reg {
		uint8_t mode:3;
		uint8_t level:5;
		uint16_t count:11;
		uint16_t :5;
		uint32_t addr:24;
		uint64_t wide:64;
	};`)
	buf := Alloc(l)

	for _, f := range l.Fields {
		limit := f.Mask()
		for _, x := range []uint64{0, 1, limit / 2, limit - 1, limit} {
			if err := Write(l, f.Name, x, buf); err != nil {
				t.Fatalf("Write(%s, %d): %v", f.Name, x, err)
			}
			got, err := Read(l, f.Name, buf)
			if err != nil {
				t.Fatalf("Read(%s): %v", f.Name, err)
			}
			if got != x {
				t.Errorf("%s: wrote %d, read %d", f.Name, x, got)
			}
		}
	}
}

func TestBitfieldMaskingTruncates(t *testing.T) {
	l := mustLayout(t, "struct s { uint8_t a:3; uint8_t b:5; };")
	buf := Alloc(l)

	for _, width := range []struct {
		name  string
		width uint
	}{{"a", 3}, {"b", 5}} {
		x := uint64(1) << width.width
		for _, v := range []uint64{x, x + 3, x*2 + 1} {
			if err := Write(l, width.name, v, buf); err != nil {
				t.Fatal(err)
			}
			got, _ := Read(l, width.name, buf)
			if want := v % x; got != want {
				t.Errorf("%s: wrote %d, read %d, want %d", width.name, v, got, want)
			}
		}
	}
}

func TestBitfieldPreservesNeighbours(t *testing.T) {
	l := mustLayout(t, "struct s { uint8_t a:3; uint8_t b:5; uint16_t c:4; uint16_t d:12; };")
	buf := []byte{0xff, 0xff, 0xff}

	if err := Write(l, "b", 0, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0x07 {
		t.Errorf("byte 0: got %#x, want 0x07", buf[0])
	}
	if err := Write(l, "c", 0x5, buf); err != nil {
		t.Fatal(err)
	}
	if buf[1] != 0xf5 || buf[2] != 0xff {
		t.Errorf("bytes 1-2: got %#x %#x, want 0xf5 0xff", buf[1], buf[2])
	}
	d, _ := Read(l, "d", buf)
	if d != 0xfff {
		t.Errorf("d: got %#x, want 0xfff", d)
	}
}

func TestPlainFieldLittleEndian(t *testing.T) {
	l := mustLayout(t, "struct s { uint8_t tag; uint32_t value; uint16_t crc; };")
	buf := Alloc(l)

	if err := Write(l, "value", 0x11223344, buf); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0x44, 0x33, 0x22, 0x11, 0, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buffer: got % x, want % x", buf, want)
		}
	}

	// Only Size bytes are copied; the rest of the value is dropped.
	if err := Write(l, "crc", 0xaabbccdd, buf); err != nil {
		t.Fatal(err)
	}
	got, _ := Read(l, "crc", buf)
	if got != 0xccdd {
		t.Errorf("crc: got %#x, want 0xccdd", got)
	}
	value, _ := Read(l, "value", buf)
	if value != 0x11223344 {
		t.Errorf("value: got %#x, want 0x11223344", value)
	}
}

func TestAccessErrors(t *testing.T) {
	l := mustLayout(t, "struct s { uint8_t a:3; uint32_t b; };")

	t.Run("field not found", func(t *testing.T) {
		buf := Alloc(l)
		if err := Write(l, "missing", 1, buf); !stderrors.Is(err, errors.ErrFieldNotFound) {
			t.Errorf("Write: got %v", err)
		}
		if _, err := Read(l, "missing", buf); !stderrors.Is(err, errors.ErrFieldNotFound) {
			t.Errorf("Read: got %v", err)
		}
	})

	t.Run("buffer too small", func(t *testing.T) {
		buf := []byte{0xaa, 0xbb, 0xcc}
		if err := Write(l, "b", 1, buf); !stderrors.Is(err, errors.ErrBufferTooSmall) {
			t.Errorf("Write: got %v", err)
		}
		if buf[0] != 0xaa || buf[1] != 0xbb || buf[2] != 0xcc {
			t.Errorf("buffer modified on error: % x", buf)
		}
		if _, err := Read(l, "b", buf); !stderrors.Is(err, errors.ErrBufferTooSmall) {
			t.Errorf("Read: got %v", err)
		}
		if _, err := Read(l, "a", nil); !stderrors.Is(err, errors.ErrBufferTooSmall) {
			t.Errorf("Read nil buffer: got %v", err)
		}
	})
}

func TestAllocCoversExtent(t *testing.T) {
	l := mustLayout(t, "struct s { uint32_t a:3; };")
	if l.Size != 1 {
		t.Fatalf("size: got %d, want 1", l.Size)
	}
	buf := Alloc(l)
	if len(buf) != 4 {
		t.Fatalf("Alloc: got %d bytes, want 4", len(buf))
	}
	if err := Write(l, "a", 5, buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(l, "a", 5, make([]byte, l.Size)); !stderrors.Is(err, errors.ErrBufferTooSmall) {
		t.Errorf("Write into Size bytes: got %v", err)
	}
}

func TestReadAll(t *testing.T) {
	l := mustLayout(t, "struct s { uint8_t a:4; uint8_t b:4; uint16_t c; };")
	buf := []byte{0x21, 0x34, 0x12}

	values, err := ReadAll(l, buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 2, 0x1234}
	if len(values) != len(want) {
		t.Fatalf("values: got %d, want %d", len(values), len(want))
	}
	for i, v := range values {
		if v.Bits != want[i] {
			t.Errorf("%s: got %#x, want %#x", v.Field.Name, v.Bits, want[i])
		}
	}

	if _, err := ReadAll(l, buf[:2]); !stderrors.Is(err, errors.ErrBufferTooSmall) {
		t.Errorf("short buffer: got %v", err)
	}
}

func TestLoadStore(t *testing.T) {
	b := make([]byte, 8)
	store(b, 0x0102030405060708)
	if b[0] != 0x08 || b[7] != 0x01 {
		t.Errorf("store: got % x", b)
	}
	if got := load(b); got != 0x0102030405060708 {
		t.Errorf("load: got %#x", got)
	}
	if got := load(b[:3]); got != 0x060708 {
		t.Errorf("load 3 bytes: got %#x", got)
	}
	if got := load(nil); got != 0 {
		t.Errorf("load nil: got %#x", got)
	}
}
