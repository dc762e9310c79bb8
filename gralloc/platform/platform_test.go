//go:build linux

package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/gralloc/format"
)

// hostOptions points every device node into an empty directory so the
// module runs on the memfd fallback only.
func hostOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.ION.Path = filepath.Join(dir, "ion")
	opts.Ashmem.Path = filepath.Join(dir, "ashmem")
	opts.Framebuffer.Paths = []string{filepath.Join(dir, "fb0")}
	return opts
}

func TestOpen_HeapOnHost(t *testing.T) {
	p := Open(hostOptions(t))
	t.Cleanup(func() { require.NoError(t, p.Close()) })

	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
	require.NoError(t, err)
	defer dev.Close()

	h, stride, err := dev.Alloc(640, 480, format.PixelRGBA8888, format.UsageSWReadOften|format.UsageSWWriteOften)
	require.NoError(t, err)
	require.Equal(t, 640, stride)
	require.Equal(t, 640*480*4, h.Size)

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(h.Descriptor.FD(), &st))
	require.EqualValues(t, h.Size, st.Size)

	require.NoError(t, dev.Free(h))
}

func TestOpen_TextureFallsBackWithoutION(t *testing.T) {
	p := Open(hostOptions(t))
	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
	require.NoError(t, err)
	defer dev.Close()

	h, _, err := dev.Alloc(64, 64, format.PixelRGB565, format.UsageHWTexture)
	require.NoError(t, err)
	require.False(t, h.Flags.Has(gralloc.FlagUsesContiguous))
	require.NoError(t, dev.Free(h))

	_, _, err = dev.Alloc(64, 64, format.PixelRGB565, format.UsageHW2D)
	require.ErrorIs(t, err, gralloc.ErrBackendUnavailable)
	require.ErrorIs(t, err, unix.ENOENT)

	require.Equal(t, "failed", p.Module.Stats().Contiguous)
}

func TestOpen_FramebufferMissing(t *testing.T) {
	p := Open(hostOptions(t))
	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
	require.NoError(t, err)
	defer dev.Close()

	_, _, err = dev.Alloc(640, 480, format.PixelRGB565, format.UsageHWFramebuffer)
	require.Error(t, err)
	require.False(t, p.Module.Stats().FramebufferMapped)
}

func TestOpen_Disabled(t *testing.T) {
	opts := hostOptions(t)
	opts.DisableION = true
	opts.DisableFramebuffer = true

	p := Open(opts)
	require.Nil(t, p.ION)
	require.Nil(t, p.Framebuffer)
	require.NotNil(t, p.Ashmem)
	require.NoError(t, p.Close())

	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
	require.NoError(t, err)
	defer dev.Close()

	_, _, err = dev.Alloc(64, 64, format.PixelRGBA8888, format.UsageHWFramebuffer)
	require.ErrorIs(t, err, gralloc.ErrBackendUnavailable)
}
