package gralloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joshuapare/gralloc/gralloc/format"
	"github.com/joshuapare/gralloc/gralloc/layout"
	"github.com/joshuapare/gralloc/internal/mmap"
)

// DeviceGPU0 is the name of the allocation device.
const DeviceGPU0 = "gpu0"

// Device allocates and frees buffers on behalf of one client. It tracks the
// handles it gave out so Close can release whatever the client leaked.
type Device struct {
	m *Module

	mu     sync.Mutex
	live   map[*BufferHandle]struct{}
	closed bool
}

// OpenDevice opens the named device. Only DeviceGPU0 is an allocation
// device; display devices are opened by the fbdev collaborator.
func (m *Module) OpenDevice(name string) (*Device, error) {
	if name != DeviceGPU0 {
		return nil, fmt.Errorf("%w: unknown device %q", ErrInvalidArgument, name)
	}
	return &Device{m: m, live: make(map[*BufferHandle]struct{})}, nil
}

// Module returns the module the device allocates from.
func (d *Device) Module() *Module { return d.m }

// Alloc allocates a w x h buffer of format f for the given usage and returns
// the handle and its row stride in pixels.
func (d *Device) Alloc(w, h int, f format.PixelFormat, usage format.Usage) (*BufferHandle, int, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, 0, ErrDeviceClosed
	}

	l, err := layout.Compute(w, h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if l.Size <= 0 {
		return nil, 0, fmt.Errorf("%w: size %d", ErrInvalidArgument, l.Size)
	}

	var hnd *BufferHandle
	if usage.Has(format.UsageHWFramebuffer) {
		hnd, err = d.m.allocFramebuffer(l.Size, usage)
	} else {
		hnd, err = d.m.allocHeap(l.Size, usage)
	}
	if err != nil {
		return nil, 0, err
	}

	hnd.Usage = usage
	hnd.Format = f
	hnd.Width = l.Width
	hnd.Height = l.Height

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.m.release(hnd)
		return nil, 0, ErrDeviceClosed
	}
	d.live[hnd] = struct{}{}
	d.mu.Unlock()

	return hnd, l.Stride, nil
}

// Free releases a buffer. A handle that this device does not own, or that
// fails validation, is rejected with ErrInvalidHandle and left untouched.
// Concurrent frees of one handle release it once; the others fail.
func (d *Device) Free(h *BufferHandle) error {
	d.mu.Lock()
	if _, ok := d.live[h]; !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: not allocated by this device", ErrInvalidHandle)
	}
	if err := Validate(h); err != nil {
		d.mu.Unlock()
		return err
	}
	delete(d.live, h)
	d.mu.Unlock()

	return d.m.release(h)
}

// Outstanding returns the number of buffers allocated and not yet freed.
func (d *Device) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Close frees every outstanding buffer and disables the device.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	live := d.live
	d.live = nil
	d.mu.Unlock()

	var errs []error
	for h := range live {
		if err := d.m.release(h); err != nil {
			errs = append(errs, err)
		}
	}
	if len(live) > 0 {
		d.m.log().Info("device closed with outstanding buffers", "count", len(live))
	}
	return errors.Join(errs...)
}

// release tears a validated handle down. The descriptor is always closed and
// the handle invalidated, whatever else fails on the way.
func (m *Module) release(h *BufferHandle) error {
	var err error
	if h.IsFramebuffer() {
		// The shared framebuffer mapping stays; only the slot is returned.
		err = m.releaseSlot(h)
		h.Mapping = nil
	} else {
		if terr := m.opts.Terminator.TerminateBuffer(h); terr != nil {
			m.log().Warn("terminate buffer", "fd", h.Descriptor.FD(), "err", terr)
		}
		if h.Flags.Has(FlagUsesContiguous) {
			m.releaseContiguous(h)
		} else {
			m.unmap(h)
		}
	}

	if cerr := h.Descriptor.Close(); cerr != nil {
		m.log().Warn("close buffer descriptor", "err", cerr)
	}
	h.magic = 0
	return err
}

// releaseContiguous frees the ION allocation behind h over a short-lived
// connection of its own; the module's shared connection is not used.
func (m *Module) releaseContiguous(h *BufferHandle) {
	if m.opts.Contiguous == nil {
		m.unmap(h)
		return
	}
	conn, err := m.opts.Contiguous.Open()
	if err != nil {
		m.log().Warn("open contiguous allocator for free", "err", err)
		m.unmap(h)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			m.log().Warn("close contiguous connection", "err", err)
		}
	}()

	bh, ierr := conn.Import(h.Descriptor.FD())
	if ierr != nil {
		m.log().Warn("ion import", "fd", h.Descriptor.FD(), "err", ierr)
	}
	m.unmap(h)
	if ierr == nil {
		if err := conn.Free(bh); err != nil {
			m.log().Warn("ion free", "handle", bh, "err", err)
		}
	}
	h.Backend = 0
}

func (m *Module) unmap(h *BufferHandle) {
	if h.Mapping == nil {
		return
	}
	if err := mmap.Unmap(h.Mapping); err != nil {
		m.log().Error("unmap buffer", "base", fmt.Sprintf("%#x", h.Base), "size", h.Size, "err", err)
	}
	h.Mapping = nil
	h.Base = 0
}
