// Package gralloc allocates and recycles graphics buffers on top of three
// backing stores: a page-flipped hardware framebuffer, the kernel
// contiguous-memory allocator (ION) and anonymous shared memory (ashmem).
//
// # Overview
//
// A Module holds the process-wide allocator state. Clients open a Device on
// it and request buffers by width, height, pixel format and usage:
//
//	m := gralloc.New(opts)
//	dev, err := m.OpenDevice(gralloc.DeviceGPU0)
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	h, stride, err := dev.Alloc(640, 480, format.PixelRGBA8888, format.UsageHWTexture)
//	if err != nil {
//	    return err
//	}
//	defer dev.Free(h)
//
// # Backend Selection
//
// Requests carrying UsageHWFramebuffer are served from the framebuffer slot
// table. Everything else goes to the heap, which tries the contiguous
// backend when the usage asks for texture or 2D access and falls back to
// shared memory otherwise:
//
//	HW_FB set                  -> framebuffer slot (or heap when only one slot exists)
//	HW_TEXTURE or HW_2D set    -> ION, then ashmem unless HW_2D was requested
//	anything else              -> ashmem
//
// # Framebuffer Slots
//
// The framebuffer is mapped once, on the first framebuffer request, and
// split into NumBuffers slots of LineLength*align128(YRes) bytes. A uint32
// bitmap records which slots are handed out; the lowest free slot wins.
//
// # ION Connection
//
// The module opens the contiguous backend at most once. A failed open is
// remembered and returned to every later caller without a retry.
//
// # Thread Safety
//
// Module and Device are safe for concurrent use. One mutex guards the
// framebuffer mapping, the slot bitmap and the ION connection state. The
// backend allocation calls themselves run without the lock.
//
// # Related Packages
//
//   - github.com/joshuapare/gralloc/gralloc/layout: size and stride computation
//   - github.com/joshuapare/gralloc/gralloc/ion: Linux ION backend
//   - github.com/joshuapare/gralloc/gralloc/ashmem: shared memory backend
//   - github.com/joshuapare/gralloc/gralloc/fbdev: framebuffer device mapper
//   - github.com/joshuapare/gralloc/gralloc/platform: wires the Linux backends together
package gralloc
