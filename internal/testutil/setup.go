//go:build linux

package testutil

import (
	"testing"

	"github.com/joshuapare/gralloc/gralloc"
)

// Backends bundles the fakes behind a test Module.
type Backends struct {
	Contiguous   *FakeContiguous
	SharedMemory *FakeSharedMemory
	Framebuffer  *FakeFramebuffer
	Terminator   *RecordingTerminator
}

// SetupModule builds a Module over fresh fakes with a framebuffer of
// numBuffers slots and opens its gpu0 device. The device is closed when the
// test ends.
//
// Example:
//
//	dev, be := testutil.SetupModule(t, 2)
//	h, _, err := dev.Alloc(64, 64, format.PixelRGBA8888, 0)
func SetupModule(t *testing.T, numBuffers uint32) (*gralloc.Device, *Backends) {
	t.Helper()
	be := &Backends{
		Contiguous:   NewFakeContiguous(),
		SharedMemory: &FakeSharedMemory{},
		Framebuffer:  NewFakeFramebuffer(t, numBuffers),
		Terminator:   &RecordingTerminator{},
	}
	return SetupModuleWith(t, be), be
}

// SetupModuleWith builds a Module over the given fakes. Nil fields leave the
// corresponding backend unset.
func SetupModuleWith(t *testing.T, be *Backends) *gralloc.Device {
	t.Helper()
	opts := gralloc.DefaultOptions()
	opts.PageSize = 4096
	if be.Contiguous != nil {
		opts.Contiguous = be.Contiguous
	}
	if be.SharedMemory != nil {
		opts.SharedMemory = be.SharedMemory
	}
	if be.Framebuffer != nil {
		opts.Framebuffer = be.Framebuffer
	}
	if be.Terminator != nil {
		opts.Terminator = be.Terminator
	}

	m := gralloc.New(opts)
	dev, err := m.OpenDevice(gralloc.DeviceGPU0)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	return dev
}
