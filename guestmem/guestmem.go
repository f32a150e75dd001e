// Package guestmem adapts WebAssembly linear memory from wazero so struct
// layouts can be read and written inside a running guest.
package guestmem

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// Memory wraps wazero memory to implement codec.Memory
type Memory struct {
	mem api.Memory
}

// New wraps mem.
func New(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// View binds l to the struct instance at base.
func (m *Memory) View(base uint32, l *schema.Layout) *codec.View {
	return codec.NewView(m, base, l)
}

// Instance is an instantiated module whose memory is exposed for struct
// access.
type Instance struct {
	runtime wazero.Runtime
	module  api.Module
	memory  *Memory
}

// Instantiate compiles and instantiates bin in a fresh runtime. The module
// must define or import a memory.
func Instantiate(ctx context.Context, bin []byte) (*Instance, error) {
	rt := wazero.NewRuntime(ctx)

	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("failed to instantiate module", err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseLoad, "module has no memory")
	}

	Logger().Debug("instantiated guest module",
		zap.String("module", mod.Name()),
		zap.Uint32("memory_bytes", mem.Size()))

	return &Instance{
		runtime: rt,
		module:  mod,
		memory:  New(mem),
	}, nil
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() *Memory {
	return i.memory
}

// View binds l to the struct instance at base.
func (i *Instance) View(base uint32, l *schema.Layout) *codec.View {
	return i.memory.View(base, l)
}

// Close releases the module and its runtime.
func (i *Instance) Close(ctx context.Context) error {
	return i.runtime.Close(ctx)
}
