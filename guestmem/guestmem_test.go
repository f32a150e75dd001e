package guestmem

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/bitstruct"
	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// memoryModule is a module with one exported page of memory.
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

// emptyModule has no sections.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func instantiate(t *testing.T) *Instance {
	t.Helper()
	ctx := context.Background()
	inst, err := Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	t.Cleanup(func() { _ = inst.Close(ctx) })
	return inst
}

func TestMemoryReadWrite(t *testing.T) {
	inst := instantiate(t)
	mem := inst.Memory()

	if mem.Size() != 65536 {
		t.Fatalf("Size: got %d, want 65536", mem.Size())
	}
	if err := mem.Write(100, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	data, err := mem.Read(100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 1 || data[2] != 3 {
		t.Errorf("Read: got % x", data)
	}

	if _, err := mem.Read(65535, 2); err == nil {
		t.Error("Read past end: expected error")
	}
	if err := mem.Write(65535, []byte{1, 2}); err == nil {
		t.Error("Write past end: expected error")
	}
}

func TestViewInGuest(t *testing.T) {
	inst := instantiate(t)
	l, err := schema.Parse("struct pkt { uint8_t kind:4; uint8_t flags:4; uint32_t seq; uint16_t len; };")
	if err != nil {
		t.Fatal(err)
	}

	v := inst.View(1024, l)
	for name, val := range map[string]uint64{"kind": 9, "flags": 3, "seq": 0xdeadbeef, "len": 512} {
		if err := v.Write(name, val); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
	}

	raw, err := inst.Memory().Read(1024, uint32(l.Extent))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x39, 0xef, 0xbe, 0xad, 0xde, 0x00, 0x02}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("guest bytes: got % x, want % x", raw, want)
		}
	}

	seq, err := v.Read("seq")
	if err != nil || seq != 0xdeadbeef {
		t.Errorf("seq: got %#x, %v", seq, err)
	}

	edge := inst.View(65536-3, l)
	var e *errors.Error
	if _, err := edge.Read("seq"); !stderrors.As(err, &e) || e.Kind != errors.KindOutOfBounds {
		t.Errorf("read past guest memory: got %v", err)
	}
	if _, err := edge.Read("kind"); err != nil {
		t.Errorf("read inside guest memory: %v", err)
	}
}

func TestInstantiateErrors(t *testing.T) {
	ctx := context.Background()

	var e *errors.Error
	if _, err := Instantiate(ctx, []byte("not wasm")); !stderrors.As(err, &e) || e.Phase != errors.PhaseLoad {
		t.Errorf("invalid binary: got %v", err)
	}
	if _, err := Instantiate(ctx, emptyModule); !stderrors.As(err, &e) || e.Kind != errors.KindInvalidInput {
		t.Errorf("no memory: got %v", err)
	}
}

func TestMemoryInterfaces(t *testing.T) {
	var _ codec.Memory = (*Memory)(nil)
	var _ bitstruct.Memory = (*Memory)(nil)
	var _ bitstruct.MemorySizer = (*Memory)(nil)
}
