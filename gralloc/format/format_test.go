package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		n, a, want int
	}{
		{1, 32, 32},
		{32, 32, 32},
		{33, 32, 64},
		{176, 64, 192},
		{144, 64, 192},
		{0, 4096, 0},
		{4097, 4096, 8192},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Align(tt.n, tt.a), "Align(%d, %d)", tt.n, tt.a)
	}
	require.Equal(t, 512, AlignPixel(481))
	require.Equal(t, 640, AlignYUV(640))
	require.Equal(t, 8192, AlignPlane(4097))
	require.Equal(t, 512, AlignFramebufferRows(480))
	require.Equal(t, 768, AlignFramebufferRows(600))
}

func TestPixelFormatClassification(t *testing.T) {
	for _, f := range PixelFormats() {
		require.True(t, f.Known(), f.String())
		if f.IsYUV() {
			require.Zero(t, f.BytesPerPixel(), f.String())
			require.NotEqual(t, SubsamplingNone, f.Subsampling())
		} else {
			require.Contains(t, []int{2, 3, 4}, f.BytesPerPixel(), f.String())
		}
	}

	require.Equal(t, Subsampling420, PixelYV12.Subsampling())
	require.Equal(t, Subsampling422, PixelYCbCr422I.Subsampling())
	require.False(t, PixelFormat(0x99).Known())
	require.Equal(t, "PixelFormat(0x99)", PixelFormat(0x99).String())
}

func TestParsePixelFormat(t *testing.T) {
	f, err := ParsePixelFormat("rgba_8888")
	require.NoError(t, err)
	require.Equal(t, PixelRGBA8888, f)

	f, err = ParsePixelFormat("YCbCr_420_SP")
	require.NoError(t, err)
	require.Equal(t, PixelYCbCr420SP, f)

	f, err = ParsePixelFormat("0x32315659")
	require.NoError(t, err)
	require.Equal(t, PixelYV12, f)

	_, err = ParsePixelFormat("bogus")
	require.Error(t, err)
}

func TestUsageString(t *testing.T) {
	require.Equal(t, "0", Usage(0).String())
	require.Equal(t, "HW_TEXTURE|HW_2D", (UsageHWTexture | UsageHW2D).String())
	require.Equal(t, "SW_READ_OFTEN|SW_WRITE_RARELY|HW_FB", (UsageSWReadOften | UsageSWWriteRarely | UsageHWFramebuffer).String())
	require.Equal(t, "HW_RENDER|0x100000", (UsageHWRender | 0x100000).String())
}

func TestParseUsage(t *testing.T) {
	u, err := ParseUsage("hw_texture|HW_2D")
	require.NoError(t, err)
	require.Equal(t, UsageHWTexture|UsageHW2D, u)

	u, err = ParseUsage("SW_READ_OFTEN, HW_FB")
	require.NoError(t, err)
	require.True(t, u.Has(UsageHWFramebuffer))
	require.True(t, u.Has(UsageSWReadOften))

	u, err = ParseUsage("0x400")
	require.NoError(t, err)
	require.Equal(t, UsageHW2D, u)

	u, err = ParseUsage("")
	require.NoError(t, err)
	require.Zero(t, u)

	_, err = ParseUsage("HW_WARP")
	require.Error(t, err)
}
