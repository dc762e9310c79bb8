package gralloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/gralloc/gralloc/format"
)

// errNextStrategy tells allocHeap to move on to the next strategy.
var errNextStrategy = errors.New("gralloc: next heap strategy")

type heapRequest struct {
	size  int // page rounded
	usage format.Usage
}

// heapStrategy is one backend attempt. allocate returns a handle, a
// terminal error, or errNextStrategy.
type heapStrategy interface {
	name() string
	allocate(req heapRequest) (*BufferHandle, error)
}

// allocHeap serves a request from the first strategy that accepts it.
// Must be called without mu held.
func (m *Module) allocHeap(size int, usage format.Usage) (*BufferHandle, error) {
	req := heapRequest{
		size:  format.AlignPage(size, m.opts.PageSize),
		usage: usage,
	}
	if size <= 0 || req.size < size {
		return nil, fmt.Errorf("%w: heap size %d", ErrInvalidArgument, size)
	}
	for _, s := range m.heap {
		h, err := s.allocate(req)
		if errors.Is(err, errNextStrategy) {
			continue
		}
		if err != nil {
			m.log().Error("heap allocation failed",
				"backend", s.name(), "size", req.size, "usage", req.usage.String(), "err", err)
			return nil, err
		}
		return h, nil
	}
	return nil, fmt.Errorf("%w: no heap backend accepted %d bytes", ErrOutOfMemory, req.size)
}

// contiguousStrategy allocates from ION for texture and 2D usage.
type contiguousStrategy struct {
	m *Module
}

func (contiguousStrategy) name() string { return "ion" }

func (s contiguousStrategy) allocate(req heapRequest) (*BufferHandle, error) {
	if !req.usage.Any(format.UsageHWTexture | format.UsageHW2D) {
		return nil, errNextStrategy
	}

	conn, err := s.m.ensureConnected()
	if err != nil {
		if !req.usage.Has(format.UsageHW2D) {
			// Texture-only users can live with non-contiguous memory.
			return nil, errNextStrategy
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	opts := &s.m.opts
	bh, err := conn.Alloc(uintptr(req.size), uintptr(opts.PageSize), opts.ContiguousHeapMask)
	if err != nil {
		return nil, fmt.Errorf("%w: ion alloc %d bytes: %w", ErrOutOfMemory, req.size, err)
	}

	fd, err := conn.Share(bh)
	if err != nil {
		s.release(conn, bh)
		return nil, fmt.Errorf("gralloc: ion share handle %d: %w", bh, err)
	}
	d := OwnDescriptor(fd)

	phys, err := conn.Phys(bh)
	if err != nil || phys == 0 {
		s.release(conn, bh)
		_ = d.Close()
		if err == nil {
			return nil, fmt.Errorf("%w: ion handle %d", ErrPhysicalAddressUnavailable, bh)
		}
		return nil, fmt.Errorf("%w: ion handle %d: %w", ErrPhysicalAddressUnavailable, bh, err)
	}

	// The shared descriptor keeps the memory alive; drop the allocation handle.
	if err := conn.Free(bh); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("gralloc: ion free handle %d: %w", bh, err)
	}

	h := newHandle(d, req.size, FlagUsesContiguous)
	h.Phys = phys
	return h, nil
}

func (s contiguousStrategy) release(conn ContiguousConn, bh BackendHandle) {
	if err := conn.Free(bh); err != nil {
		s.m.log().Warn("ion free after failed allocation", "handle", bh, "err", err)
	}
}

// sharedMemoryStrategy allocates a named ashmem region.
type sharedMemoryStrategy struct {
	m *Module
}

func (sharedMemoryStrategy) name() string { return "ashmem" }

func (s sharedMemoryStrategy) allocate(req heapRequest) (*BufferHandle, error) {
	if s.m.opts.SharedMemory == nil {
		return nil, fmt.Errorf("%w: no shared memory backend", ErrBackendUnavailable)
	}
	fd, err := s.m.opts.SharedMemory.CreateRegion(s.m.opts.RegionName, req.size)
	if err != nil {
		return nil, fmt.Errorf("%w: ashmem region of %d bytes: %w", ErrOutOfMemory, req.size, err)
	}
	return newHandle(OwnDescriptor(fd), req.size, 0), nil
}
