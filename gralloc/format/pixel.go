package format

import (
	"fmt"
	"sort"
	"strings"
)

// PixelFormat is a HAL pixel format enumerator.
type PixelFormat int32

// Packed RGB formats.
const (
	PixelRGBA8888 PixelFormat = 1
	PixelRGBX8888 PixelFormat = 2
	PixelRGB888   PixelFormat = 3
	PixelRGB565   PixelFormat = 4
	PixelBGRA8888 PixelFormat = 5
	PixelRGBA5551 PixelFormat = 6
	PixelRGBA4444 PixelFormat = 7
)

// Luma/chroma formats. 0x10 and 0x14 are the generic HAL values, the 0x10x
// range is the platform extension block.
const (
	PixelYCbCr422SP PixelFormat = 0x10
	PixelYCbCr422I  PixelFormat = 0x14
	PixelYCbCr422P  PixelFormat = 0x102
	PixelYCbCr420P  PixelFormat = 0x103
	PixelYCbCr420SP PixelFormat = 0x104
	PixelYV12       PixelFormat = 0x32315659 // 'YV12'
)

// Subsampling describes how the chroma planes of a YUV format are decimated.
type Subsampling uint8

const (
	// SubsamplingNone marks packed RGB formats.
	SubsamplingNone Subsampling = iota
	// Subsampling422 halves chroma horizontally.
	Subsampling422
	// Subsampling420 halves chroma horizontally and vertically.
	Subsampling420
)

type pixelInfo struct {
	name string
	bpp  int
	sub  Subsampling
}

var pixelFormats = map[PixelFormat]pixelInfo{
	PixelRGBA8888:   {name: "RGBA_8888", bpp: 4},
	PixelRGBX8888:   {name: "RGBX_8888", bpp: 4},
	PixelBGRA8888:   {name: "BGRA_8888", bpp: 4},
	PixelRGB888:     {name: "RGB_888", bpp: 3},
	PixelRGB565:     {name: "RGB_565", bpp: 2},
	PixelRGBA5551:   {name: "RGBA_5551", bpp: 2},
	PixelRGBA4444:   {name: "RGBA_4444", bpp: 2},
	PixelYCbCr422SP: {name: "YCbCr_422_SP", sub: Subsampling422},
	PixelYCbCr422I:  {name: "YCbCr_422_I", sub: Subsampling422},
	PixelYCbCr422P:  {name: "YCbCr_422_P", sub: Subsampling422},
	PixelYCbCr420SP: {name: "YCbCr_420_SP", sub: Subsampling420},
	PixelYCbCr420P:  {name: "YCbCr_420_P", sub: Subsampling420},
	PixelYV12:       {name: "YV12", sub: Subsampling420},
}

// Known reports whether f is a format the allocator can lay out.
func (f PixelFormat) Known() bool {
	_, ok := pixelFormats[f]
	return ok
}

// IsYUV reports whether f is one of the planar or semi-planar luma/chroma formats.
func (f PixelFormat) IsYUV() bool {
	return pixelFormats[f].sub != SubsamplingNone
}

// Subsampling returns the chroma decimation of f.
// Packed and unknown formats return SubsamplingNone.
func (f PixelFormat) Subsampling() Subsampling {
	return pixelFormats[f].sub
}

// BytesPerPixel returns the packed pixel size, or 0 for YUV and unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	return pixelFormats[f].bpp
}

func (f PixelFormat) String() string {
	if info, ok := pixelFormats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("PixelFormat(%#x)", int32(f))
}

// ParsePixelFormat resolves a format name as printed by String
// (case-insensitive) or a numeric enumerator such as "0x104".
func ParsePixelFormat(s string) (PixelFormat, error) {
	for f, info := range pixelFormats {
		if strings.EqualFold(info.name, s) {
			return f, nil
		}
	}
	var v int32
	if _, err := fmt.Sscan(s, &v); err == nil {
		return PixelFormat(v), nil
	}
	return 0, fmt.Errorf("format: unknown pixel format %q", s)
}

// PixelFormats returns every known format ordered by enumerator value.
func PixelFormats() []PixelFormat {
	out := make([]PixelFormat, 0, len(pixelFormats))
	for f := range pixelFormats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
