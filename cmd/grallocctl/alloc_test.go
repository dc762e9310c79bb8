//go:build linux

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocCommand_Heap(t *testing.T) {
	resetFlags(t)
	hostDevices(t)
	allocCount = 3
	allocFill = true

	output, err := captureOutput(t, func() error {
		return runAlloc([]string{"640", "512", "RGB_565"})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Allocated 3 buffer(s)", "ashmem", "size=655360", "Contiguous: uninitialized"})
}

func TestAllocCommand_TextureFallsBack(t *testing.T) {
	resetFlags(t)
	hostDevices(t)
	jsonOut = true
	allocUsage = "HW_TEXTURE"
	allocCount = 2

	output, err := captureOutput(t, func() error {
		return runAlloc([]string{"176", "144", "YCbCr_420_SP"})
	})
	require.NoError(t, err)

	var res allocResult
	assertJSON(t, output, &res)
	require.Equal(t, "HW_TEXTURE", res.Usage)
	require.Len(t, res.Buffers, 2)
	for _, b := range res.Buffers {
		require.Equal(t, "ashmem", b.Backend)
		require.Equal(t, 61440, b.Size)
		require.Equal(t, 192, b.Stride)
	}
	require.Equal(t, "failed", res.Stats.Contiguous)
	require.Empty(t, res.Error)
}

func TestAllocCommand_2DNeedsION(t *testing.T) {
	resetFlags(t)
	hostDevices(t)
	jsonOut = true
	allocUsage = "HW_2D"

	output, err := captureOutput(t, func() error {
		return runAlloc([]string{"64", "64", "RGBA_8888"})
	})
	require.Error(t, err)

	var res allocResult
	assertJSON(t, output, &res)
	require.Empty(t, res.Buffers)
	require.Contains(t, res.Error, "buffer 0")
}

func TestAllocCommand_FramebufferMissing(t *testing.T) {
	resetFlags(t)
	hostDevices(t)
	allocUsage = "HW_FB"

	output, err := captureOutput(t, func() error {
		return runAlloc([]string{"640", "480", "RGB_565"})
	})
	require.Error(t, err)
	assertContains(t, output, []string{"Allocated 0 buffer(s)", "stopped:", "Framebuffer: not mapped"})
}

func TestAllocCommand_BadArguments(t *testing.T) {
	resetFlags(t)
	hostDevices(t)

	allocUsage = "HW_WARP"
	_, err := captureOutput(t, func() error {
		return runAlloc([]string{"64", "64", "RGBA_8888"})
	})
	require.Error(t, err)

	resetFlags(t)
	allocCount = 0
	_, err = captureOutput(t, func() error {
		return runAlloc([]string{"64", "64", "RGBA_8888"})
	})
	require.ErrorContains(t, err, "--count")
}
