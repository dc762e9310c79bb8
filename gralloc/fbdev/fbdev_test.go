//go:build linux

package fbdev

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestScreenInfoLayout(t *testing.T) {
	assert.Equal(t, uintptr(160), unsafe.Sizeof(varScreenInfo{}))
	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(80), unsafe.Sizeof(fixScreenInfo{}))
	} else {
		assert.Equal(t, uintptr(68), unsafe.Sizeof(fixScreenInfo{}))
	}
}

func TestComputeGeometry(t *testing.T) {
	const page = 4096
	tests := []struct {
		name        string
		lineLength  uint32
		smemLen     uint32
		yres        uint32
		yresVirtual uint32
		buffers     uint32
		mapSize     int
	}{
		{"two screens", 1280, 0, 480, 1024, 2, 1280 * 512 * 2},
		{"aligned rows", 2560, 0, 512, 1024, 2, 2560 * 512 * 2},
		{"refused flip", 1280, 0, 480, 480, 1, 1280 * 512},
		{"memory caps slots", 1280, 1280 * 512 * 3, 480, 512 * 8, 3, 1280 * 512 * 3},
		{"slot limit", 64, 0, 128, 128 * 40, 32, 64 * 128 * 32},
		{"page rounding", 100, 0, 10, 128, 1, 16384},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := computeGeometry(tt.lineLength, tt.smemLen, tt.yres, tt.yresVirtual, page)
			require.NoError(t, err)
			require.Equal(t, tt.buffers, g.buffers)
			require.Equal(t, tt.mapSize, g.mapSize)
			require.Zero(t, g.mapSize%page)
		})
	}
}

func TestComputeGeometry_Unusable(t *testing.T) {
	_, err := computeGeometry(0, 0, 480, 960, 4096)
	require.ErrorIs(t, err, ErrGeometry)

	_, err = computeGeometry(1280, 0, 0, 0, 4096)
	require.ErrorIs(t, err, ErrGeometry)

	// Less video memory than one screen.
	_, err = computeGeometry(1280, 4096, 480, 480, 4096)
	require.ErrorIs(t, err, ErrGeometry)
}

func TestNew_Defaults(t *testing.T) {
	m := New(Options{})
	require.Equal(t, DefaultPaths, m.opts.Paths)
	require.Equal(t, uint32(DefaultBuffers), m.opts.Buffers)
	require.Equal(t, os.Getpagesize(), m.opts.PageSize)
}

func TestMapFramebuffer_NoDevice(t *testing.T) {
	dir := t.TempDir()
	m := New(Options{Paths: []string{filepath.Join(dir, "fb0"), filepath.Join(dir, "fb1")}})

	_, err := m.MapFramebuffer()
	require.ErrorIs(t, err, ErrNoDevice)
	require.ErrorIs(t, err, unix.ENOENT)
	require.Contains(t, err.Error(), "fb1")
	require.Zero(t, m.Info())
}

func TestMapFramebuffer_NotAFramebuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb0")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o600))

	m := New(Options{Paths: []string{path}})
	_, err := m.MapFramebuffer()
	require.ErrorIs(t, err, unix.ENOTTY)
	require.Contains(t, err.Error(), path)
}

func TestClose(t *testing.T) {
	m := New(Options{Paths: []string{filepath.Join(t.TempDir(), "fb0")}})

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.MapFramebuffer()
	require.ErrorIs(t, err, ErrClosed)
}

func TestFixScreenInfoID(t *testing.T) {
	var f fixScreenInfo
	copy(f.ID[:], "mxc_fb")
	require.Equal(t, "mxc_fb", f.id())

	copy(f.ID[:], "0123456789abcdef")
	require.Equal(t, "0123456789abcdef", f.id())
}
