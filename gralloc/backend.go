package gralloc

import "github.com/joshuapare/gralloc/gralloc/format"

// BackendHandle is the contiguous backend's reference to one allocation.
// It is only meaningful on the connection that produced it.
type BackendHandle int32

// ContiguousAllocator opens connections to the contiguous-memory service.
//
// Implementations:
//   - ion.Device: /dev/ion
//   - testutil.FakeContiguous: in-memory fake for tests
type ContiguousAllocator interface {
	Open() (ContiguousConn, error)
}

// ContiguousConn is one open connection to the contiguous-memory service.
// Methods must be safe for concurrent use; the module shares one connection
// between all allocating goroutines.
type ContiguousConn interface {
	// Alloc reserves size bytes aligned to align from the pools in heapMask.
	Alloc(size, align uintptr, heapMask uint32) (BackendHandle, error)

	// Share returns a new descriptor for the allocation that outlives h.
	Share(h BackendHandle) (int, error)

	// Phys returns the physical base address of the allocation.
	Phys(h BackendHandle) (uintptr, error)

	// Import resolves a shared descriptor back to a handle on this connection.
	Import(fd int) (BackendHandle, error)

	// Free drops the connection's reference to h.
	Free(h BackendHandle) error

	Close() error
}

// SharedMemory creates anonymous shared memory regions.
type SharedMemory interface {
	// CreateRegion returns a descriptor for a new region of size bytes.
	CreateRegion(name string, size int) (int, error)
}

// FramebufferMapper maps the display memory once for the module.
type FramebufferMapper interface {
	MapFramebuffer() (*Framebuffer, error)
}

// Terminator tears down any registration state a buffer acquired outside
// the allocator (for example a mapping made by a lock call).
type Terminator interface {
	TerminateBuffer(h *BufferHandle) error
}

// Framebuffer describes the mapped display memory.
type Framebuffer struct {
	FD         int     // device descriptor; shared, never closed by the allocator
	Base       uintptr // virtual address of the mapping
	Phys       uintptr // physical address of the display memory
	LineLength uint32  // bytes per line
	YRes       uint32  // visible lines per screen
	NumBuffers uint32  // number of slots the mapping holds

	// Data is the mapping itself. It may be nil when the region is not
	// CPU-accessible.
	Data []byte
}

// BufferSize returns the byte size of one slot.
func (fb *Framebuffer) BufferSize() uintptr {
	return uintptr(fb.LineLength) * uintptr(format.AlignFramebufferRows(int(fb.YRes)))
}

type nopTerminator struct{}

func (nopTerminator) TerminateBuffer(*BufferHandle) error { return nil }
