//go:build linux

// Package platform assembles a gralloc.Module over the Linux device nodes:
// ION for contiguous memory, ashmem (or memfd) for the heap fallback and
// fbdev for the display.
//
//	p := platform.Open(platform.DefaultOptions())
//	defer p.Close()
//	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
//
// Nothing is opened until the first allocation needs it.
package platform

import (
	"log/slog"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/gralloc/ashmem"
	"github.com/joshuapare/gralloc/gralloc/fbdev"
	"github.com/joshuapare/gralloc/gralloc/ion"
)

// Options configures every backend.
type Options struct {
	ION         ion.Options
	Ashmem      ashmem.Options
	Framebuffer fbdev.Options
	Module      gralloc.Options

	// DisableION leaves the module without a contiguous allocator, so
	// texture buffers come from ashmem and 2D buffers fail.
	DisableION bool

	// DisableFramebuffer leaves the module without a display.
	DisableFramebuffer bool

	// Logger is handed to every backend that has none.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns options for the standard device nodes.
func DefaultOptions() Options {
	return Options{
		ION:         ion.DefaultOptions(),
		Ashmem:      ashmem.DefaultOptions(),
		Framebuffer: fbdev.DefaultOptions(),
		Module:      gralloc.DefaultOptions(),
	}
}

// Platform is a Module wired to real devices.
type Platform struct {
	Module      *gralloc.Module
	ION         *ion.Device // nil when disabled
	Ashmem      *ashmem.Allocator
	Framebuffer *fbdev.Mapper // nil when disabled
}

// Open builds the Module. Device nodes are opened lazily by the module.
func Open(opts Options) *Platform {
	if opts.Logger != nil {
		if opts.Ashmem.Logger == nil {
			opts.Ashmem.Logger = opts.Logger
		}
		if opts.Framebuffer.Logger == nil {
			opts.Framebuffer.Logger = opts.Logger
		}
		if opts.Module.Logger == nil {
			opts.Module.Logger = opts.Logger
		}
	}

	p := &Platform{Ashmem: ashmem.New(opts.Ashmem)}
	mo := opts.Module
	mo.SharedMemory = p.Ashmem
	if !opts.DisableION {
		p.ION = ion.New(opts.ION)
		mo.Contiguous = p.ION
	}
	if !opts.DisableFramebuffer {
		p.Framebuffer = fbdev.New(opts.Framebuffer)
		mo.Framebuffer = p.Framebuffer
	}
	p.Module = gralloc.New(mo)
	return p
}

// Close releases the framebuffer mapping. Free every buffer first.
func (p *Platform) Close() error {
	if p.Framebuffer == nil {
		return nil
	}
	return p.Framebuffer.Close()
}
