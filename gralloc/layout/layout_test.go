package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gralloc/gralloc/format"
)

func TestComputeRGB(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		f      format.PixelFormat
		wantW  int
		wantH  int
		wantSz int
	}{
		{"vga rgba", 640, 480, format.PixelRGBA8888, 640, 480, 640 * 480 * 4},
		{"odd bgra", 641, 479, format.PixelBGRA8888, 672, 480, 672 * 480 * 4},
		{"rgbx", 100, 100, format.PixelRGBX8888, 128, 128, 128 * 128 * 4},
		{"rgb888", 33, 1, format.PixelRGB888, 64, 32, 64 * 32 * 3},
		{"rgb565", 800, 600, format.PixelRGB565, 800, 608, 800 * 608 * 2},
		{"rgba5551", 1, 1, format.PixelRGBA5551, 32, 32, 32 * 32 * 2},
		{"rgba4444", 31, 31, format.PixelRGBA4444, 32, 32, 32 * 32 * 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.w, tt.h, tt.f)
			require.NoError(t, err)
			require.Equal(t, tt.wantW, l.Width)
			require.Equal(t, tt.wantH, l.Height)
			require.Equal(t, tt.wantW, l.Stride)
			require.Equal(t, tt.wantSz, l.Size)
			require.Zero(t, l.LumaSize)
			require.Zero(t, l.ChromaSize)
		})
	}
}

func TestComputeYUV420SemiPlanar(t *testing.T) {
	l, err := Compute(176, 144, format.PixelYCbCr420SP)
	require.NoError(t, err)

	require.Equal(t, 192, l.Width)
	require.Equal(t, 192, l.Height)
	require.Equal(t, 192, l.Stride)
	require.Equal(t, 36864, l.LumaSize)
	// (96*96 = 9216 -> 12288) * 2
	require.Equal(t, 24576, l.ChromaSize)
	require.Equal(t, 61440, l.Size)
}

func TestComputeYUV422(t *testing.T) {
	l, err := Compute(176, 144, format.PixelYCbCr422SP)
	require.NoError(t, err)

	require.Equal(t, 36864, l.LumaSize)
	// 36864/2 = 18432 -> 20480, doubled
	require.Equal(t, 40960, l.ChromaSize)
	require.Equal(t, 77824, l.Size)
}

func TestComputeAllFormatsPageMultiple(t *testing.T) {
	sizes := [][2]int{{1, 1}, {176, 144}, {320, 240}, {640, 480}, {720, 576}, {1280, 720}, {1920, 1080}, {1023, 767}}
	for _, f := range format.PixelFormats() {
		for _, sz := range sizes {
			l, err := Compute(sz[0], sz[1], f)
			require.NoError(t, err, "%s %v", f, sz)
			require.Positive(t, l.Size)
			require.Equal(t, l.Width, l.Stride)
			require.GreaterOrEqual(t, l.Width, sz[0])
			require.GreaterOrEqual(t, l.Height, sz[1])
			require.Zero(t, format.AlignPage(l.Size, format.DefaultPageSize)%format.DefaultPageSize)
			if f.IsYUV() {
				require.Zero(t, l.LumaSize%format.PlaneAlign, "%s %v luma", f, sz)
				require.Zero(t, l.Size%format.PlaneAlign, "%s %v size", f, sz)
				require.Equal(t, l.Size, l.LumaSize+l.ChromaSize)
				require.Zero(t, l.Width%format.YUVAlign)
				require.Zero(t, l.Height%format.YUVAlign)
			} else {
				require.Zero(t, l.Width%format.PixelAlign)
				require.Zero(t, l.Height%format.PixelAlign)
			}
		}
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	_, err := Compute(64, 64, format.PixelFormat(0x999))
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Compute(0, 64, format.PixelRGBA8888)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Compute(64, -1, format.PixelYV12)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestComputeRejectsHugeDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		f    format.PixelFormat
	}{
		{"max int32 rgba", math.MaxInt32, math.MaxInt32, format.PixelRGBA8888},
		{"max int32 rgb565", math.MaxInt32, math.MaxInt32, format.PixelRGB565},
		{"max int32 yv12", math.MaxInt32, math.MaxInt32, format.PixelYV12},
		{"max int32 nv16", math.MaxInt32, math.MaxInt32, format.PixelYCbCr422SP},
		{"max int width", math.MaxInt, 1, format.PixelRGBA8888},
		{"max int height", 1, math.MaxInt, format.PixelYCbCr420SP},
		{"width wraps on align", math.MaxInt32, 1, format.PixelRGB888},
		{"size above limit", 65536, 65536, format.PixelRGBA8888},
		{"yuv size above limit", 65536, 65536, format.PixelYCbCr422P},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.w, tt.h, tt.f)
			require.ErrorIs(t, err, ErrInvalidDimensions)
			require.Zero(t, l)
		})
	}
}

func TestComputeLargeButValid(t *testing.T) {
	l, err := Compute(8192, 8192, format.PixelRGBA8888)
	require.NoError(t, err)
	require.Equal(t, 268435456, l.Size)
	require.LessOrEqual(t, l.Size, MaxSize)
}
