package gralloc

import (
	"fmt"
	"strings"

	"github.com/joshuapare/gralloc/gralloc/format"
)

// HandleFlags records which backend produced a buffer. They are fixed at
// allocation time.
type HandleFlags uint32

const (
	// FlagFramebuffer marks a slice of the framebuffer mapping.
	FlagFramebuffer HandleFlags = 0x1

	// FlagUsesContiguous marks physically contiguous memory (ION or the
	// framebuffer).
	FlagUsesContiguous HandleFlags = 0x2
)

// Has reports whether every bit of f2 is set.
func (f HandleFlags) Has(f2 HandleFlags) bool { return f&f2 == f2 }

func (f HandleFlags) String() string {
	var parts []string
	if f.Has(FlagFramebuffer) {
		parts = append(parts, "FRAMEBUFFER")
	}
	if f.Has(FlagUsesContiguous) {
		parts = append(parts, "CONTIGUOUS")
	}
	if rest := f &^ (FlagFramebuffer | FlagUsesContiguous); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// handleMagic tags live handles; Free clears it.
const handleMagic uint32 = 0x3141592

// BufferHandle is one allocated buffer and the OS resources behind it.
//
// The exported fields are read by the lock/unlock and registration code.
// Only the allocator writes them, except Mapping and Base, which a lock
// implementation sets when it maps the buffer.
type BufferHandle struct {
	magic uint32

	Descriptor Descriptor

	// Size is the byte length, page rounded for heap buffers. For
	// framebuffer slices it is the requested layout size as is; it may
	// exceed the slot, and Mapping covers only the slot.
	Size int

	Flags  HandleFlags // backend flags
	Offset uintptr     // offset into the framebuffer for slices
	Base   uintptr     // virtual address once mapped
	Phys   uintptr     // physical address for contiguous and framebuffer memory

	Width  int // aligned width
	Height int // aligned height
	Format format.PixelFormat
	Usage  format.Usage

	// Backend is the contiguous backend's reference to the allocation.
	// It is zero once the allocator has released its reference.
	Backend BackendHandle

	// Mapping is the CPU mapping of the buffer, if any. For framebuffer
	// slices it aliases the shared framebuffer mapping.
	Mapping []byte
}

func newHandle(d Descriptor, size int, flags HandleFlags) *BufferHandle {
	return &BufferHandle{
		magic:      handleMagic,
		Descriptor: d,
		Size:       size,
		Flags:      flags,
	}
}

// Validate checks that h is a live handle produced by this package.
// Code outside the allocator must call it before trusting a handle.
func Validate(h *BufferHandle) error {
	if h == nil {
		return fmt.Errorf("%w: nil", ErrInvalidHandle)
	}
	if h.magic != handleMagic {
		return fmt.Errorf("%w: bad magic %#x", ErrInvalidHandle, h.magic)
	}
	if !h.Descriptor.Valid() {
		return fmt.Errorf("%w: descriptor closed", ErrInvalidHandle)
	}
	if h.Flags.Has(FlagFramebuffer) && h.Descriptor.Ownership() != Duplicated {
		return fmt.Errorf("%w: framebuffer slice owns its descriptor", ErrInvalidHandle)
	}
	return nil
}

// IsFramebuffer reports whether h is a framebuffer slice.
func (h *BufferHandle) IsFramebuffer() bool { return h.Flags.Has(FlagFramebuffer) }

func (h *BufferHandle) String() string {
	return fmt.Sprintf("handle{fd=%d size=%d flags=%s %dx%d %s usage=%s phys=%#x}",
		h.Descriptor.FD(), h.Size, h.Flags, h.Width, h.Height, h.Format, h.Usage, h.Phys)
}
