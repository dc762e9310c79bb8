package gralloc

import (
	"log/slog"
	"os"
)

const (
	// DefaultContiguousHeapMask selects the GPU pool (heap id 2).
	DefaultContiguousHeapMask uint32 = 1 << 2

	// DefaultRegionName names shared memory regions.
	DefaultRegionName = "gralloc-buffer"
)

// Options configures a Module.
//
// Use DefaultOptions() and fill in the backends.
type Options struct {
	// Framebuffer maps the display memory on the first framebuffer request.
	// Default: nil (framebuffer requests fail with ErrBackendUnavailable)
	Framebuffer FramebufferMapper

	// Contiguous opens the ION service.
	// Default: nil (treated as a failed connection)
	Contiguous ContiguousAllocator

	// SharedMemory creates ashmem regions. Required.
	SharedMemory SharedMemory

	// Terminator releases external registration state in Free.
	// Default: no-op
	Terminator Terminator

	// ContiguousHeapMask selects the ION pools.
	// Default: DefaultContiguousHeapMask
	ContiguousHeapMask uint32

	// PageSize is the rounding unit for heap buffers and the ION alignment.
	// Default: os.Getpagesize()
	PageSize int

	// RegionName names shared memory regions.
	// Default: DefaultRegionName
	RegionName string

	// Logger receives allocation diagnostics.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns Options with every tunable set and no backends.
func DefaultOptions() Options {
	return Options{
		ContiguousHeapMask: DefaultContiguousHeapMask,
		PageSize:           os.Getpagesize(),
		RegionName:         DefaultRegionName,
	}
}

func (o *Options) setDefaults() {
	def := DefaultOptions()
	if o.ContiguousHeapMask == 0 {
		o.ContiguousHeapMask = def.ContiguousHeapMask
	}
	if o.PageSize <= 0 {
		o.PageSize = def.PageSize
	}
	if o.RegionName == "" {
		o.RegionName = def.RegionName
	}
	if o.Terminator == nil {
		o.Terminator = nopTerminator{}
	}
}
