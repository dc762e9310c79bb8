package gralloc

import (
	"fmt"
	"log/slog"
	"math/bits"
	"sync"

	"github.com/joshuapare/gralloc/gralloc/format"
	"github.com/joshuapare/gralloc/internal/logger"
)

// Module is the process-wide allocator state shared by every Device.
//
// All fields behind mu are reached only through methods that take the lock
// (or are documented as running with it held).
type Module struct {
	mu         sync.Mutex
	fb         *Framebuffer
	bufferMask uint32
	ion        connState

	opts Options
	heap []heapStrategy
}

// New creates a Module. Backends missing from opts degrade as documented
// on Options.
func New(opts Options) *Module {
	opts.setDefaults()
	m := &Module{opts: opts}
	m.heap = []heapStrategy{
		contiguousStrategy{m: m},
		sharedMemoryStrategy{m: m},
	}
	return m
}

func (m *Module) log() *slog.Logger {
	if m.opts.Logger != nil {
		return m.opts.Logger
	}
	return logger.L
}

// mapFramebufferLocked maps the display memory. Runs with mu held.
func (m *Module) mapFramebufferLocked() error {
	if m.opts.Framebuffer == nil {
		return fmt.Errorf("%w: no framebuffer mapper", ErrBackendUnavailable)
	}
	fb, err := m.opts.Framebuffer.MapFramebuffer()
	if err != nil {
		return fmt.Errorf("gralloc: map framebuffer: %w", err)
	}
	if fb == nil || fb.NumBuffers == 0 || fb.NumBuffers > format.MaxFramebufferSlots {
		n := uint32(0)
		if fb != nil {
			n = fb.NumBuffers
		}
		return fmt.Errorf("%w: framebuffer reports %d buffers", ErrBackendUnavailable, n)
	}
	if fb.BufferSize() == 0 {
		return fmt.Errorf("%w: framebuffer has zero-sized slots", ErrBackendUnavailable)
	}
	m.fb = fb
	m.log().Info("framebuffer mapped",
		"buffers", fb.NumBuffers,
		"line_length", fb.LineLength,
		"yres", fb.YRes,
		"phys", fmt.Sprintf("%#x", fb.Phys))
	return nil
}

// Stats is a snapshot of the module state.
type Stats struct {
	FramebufferMapped bool   `json:"framebuffer_mapped"`
	NumBuffers        uint32 `json:"num_buffers"`
	BufferMask        uint32 `json:"buffer_mask"`
	SlotsInUse        int    `json:"slots_in_use"`
	SlotSize          uint64 `json:"slot_size"`
	Contiguous        string `json:"contiguous"`
	ContiguousError   string `json:"contiguous_error,omitempty"`
}

// Stats returns a consistent snapshot of the module state.
func (m *Module) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		BufferMask: m.bufferMask,
		SlotsInUse: bits.OnesCount32(m.bufferMask),
		Contiguous: m.ion.phase.String(),
	}
	if m.fb != nil {
		s.FramebufferMapped = true
		s.NumBuffers = m.fb.NumBuffers
		s.SlotSize = uint64(m.fb.BufferSize())
	}
	if m.ion.err != nil {
		s.ContiguousError = m.ion.err.Error()
	}
	return s
}

// Framebuffer returns the mapped framebuffer, or nil before the first
// framebuffer allocation. The returned value must not be modified.
func (m *Module) Framebuffer() *Framebuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fb
}
