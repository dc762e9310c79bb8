package gralloc

import (
	"fmt"

	"github.com/joshuapare/gralloc/gralloc/format"
)

// allocFramebuffer hands out a framebuffer slot for a HW_FB request.
func (m *Module) allocFramebuffer(size int, usage format.Usage) (*BufferHandle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: framebuffer size %d", ErrInvalidArgument, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocFramebufferLocked(size, usage)
}

// allocFramebufferLocked runs with mu held. It drops the lock only around
// the single-slot heap fallback.
func (m *Module) allocFramebufferLocked(size int, usage format.Usage) (*BufferHandle, error) {
	if m.fb == nil {
		// Mapped once and forever.
		if err := m.mapFramebufferLocked(); err != nil {
			return nil, err
		}
	}

	fb := m.fb
	bufferSize := fb.BufferSize()

	if fb.NumBuffers == 1 {
		// No page flipping with one buffer: hand out a regular 2D buffer
		// that gets copied to the screen on post.
		newUsage := usage&^format.UsageHWFramebuffer | format.UsageHW2D
		m.mu.Unlock()
		h, err := m.allocHeap(int(bufferSize), newUsage)
		m.mu.Lock()
		return h, err
	}

	full := uint32(1)<<fb.NumBuffers - 1
	if m.bufferMask&full == full {
		m.log().Warn("framebuffer slots exhausted", "buffers", fb.NumBuffers)
		return nil, ErrOutOfBufferSlots
	}

	d, err := DuplicateDescriptor(fb.FD)
	if err != nil {
		return nil, err
	}

	var index uint32
	for index = 0; index < fb.NumBuffers; index++ {
		if m.bufferMask&(1<<index) == 0 {
			m.bufferMask |= 1 << index
			break
		}
	}

	offset := uintptr(index) * bufferSize
	// Size stays the layout size; Mapping is bounded by the slot.
	h := newHandle(d, size, FlagFramebuffer|FlagUsesContiguous)
	h.Offset = offset
	h.Base = fb.Base + offset
	h.Phys = fb.Phys + offset
	if end := offset + bufferSize; end <= uintptr(len(fb.Data)) {
		h.Mapping = fb.Data[offset:end:end]
	}
	return h, nil
}

// releaseSlot clears the slot bit of a framebuffer slice.
func (m *Module) releaseSlot(h *BufferHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fb == nil || h.Base < m.fb.Base {
		return fmt.Errorf("%w: framebuffer slice outside the framebuffer", ErrInvalidHandle)
	}
	index := (h.Base - m.fb.Base) / m.fb.BufferSize()
	if index >= uintptr(m.fb.NumBuffers) {
		return fmt.Errorf("%w: framebuffer slot %d out of range", ErrInvalidHandle, index)
	}
	m.bufferMask &^= 1 << index
	return nil
}
