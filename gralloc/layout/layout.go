// Package layout computes the aligned geometry and byte size of a buffer
// from its requested dimensions and pixel format.
//
// # Packed RGB
//
// Width and height are aligned to 32 pixels and multiplied by the bytes per
// pixel of the format (4, 3 or 2).
//
// # YUV
//
// Width and height are aligned to 64 pixels. The luma plane is rounded up to
// 4096 bytes so that the chroma planes that follow it start on a 4096-byte
// boundary. Each of the two chroma planes is half (4:2:2) or a quarter (4:2:0)
// of the luma area, rounded up to 4096 bytes.
//
// The stride reported for every format is the aligned width in pixels.
// Dimensions above MaxDimension, and layouts whose size overflows or exceeds
// MaxSize, are rejected with ErrInvalidDimensions.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/gralloc/gralloc/format"
)

var (
	// ErrInvalidFormat indicates a pixel format the calculator does not know.
	ErrInvalidFormat = errors.New("layout: invalid pixel format")

	// ErrInvalidDimensions indicates a non-positive width or height, or a
	// buffer larger than MaxSize.
	ErrInvalidDimensions = errors.New("layout: invalid dimensions")
)

const (
	// MaxDimension bounds the requested width and height.
	MaxDimension = math.MaxInt32

	// MaxSize bounds the total byte size; handle sizes are 32-bit.
	MaxSize = math.MaxInt32
)

// Layout is the computed geometry of one buffer.
type Layout struct {
	Width  int // aligned width in pixels
	Height int // aligned height in pixels
	Stride int // row stride in pixels, always Width
	Size   int // total bytes

	// LumaSize and ChromaSize are set for YUV formats only. The chroma
	// planes start at LumaSize.
	LumaSize   int
	ChromaSize int
}

// Compute returns the layout of a w x h buffer of format f.
func Compute(w, h int, f format.PixelFormat) (Layout, error) {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return Layout{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if !f.Known() {
		return Layout{}, fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}
	var (
		l   Layout
		err error
	)
	if f.IsYUV() {
		l, err = computeYUV(w, h, f)
	} else {
		l, err = computeRGB(w, h, f)
	}
	if err != nil {
		return Layout{}, err
	}
	if l.Size <= 0 || l.Size > MaxSize {
		return Layout{}, fmt.Errorf("%w: %dx%d %s needs %d bytes", ErrInvalidDimensions, w, h, f, l.Size)
	}
	return l, nil
}

// mul returns a*b, or ok=false when the product of two positive values
// does not fit in an int.
func mul(a, b int) (int, bool) {
	if a <= 0 || b <= 0 || a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

func add(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

func alignPlane(n int) (int, bool) {
	r := format.AlignPlane(n)
	return r, r > 0 && r >= n
}

// alignedDims aligns both dimensions, failing when either wraps.
func alignedDims(w, h int, align func(int) int) (int, int, bool) {
	aw, ah := align(w), align(h)
	return aw, ah, aw >= w && ah >= h
}

func tooLarge(w, h int, f format.PixelFormat) error {
	return fmt.Errorf("%w: %dx%d %s overflows", ErrInvalidDimensions, w, h, f)
}

func computeYUV(w, h int, f format.PixelFormat) (Layout, error) {
	aw, ah, ok := alignedDims(w, h, format.AlignYUV)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	area, ok := mul(aw, ah)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	luma, ok := alignPlane(area)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}

	var plane int
	switch f.Subsampling() {
	case format.Subsampling422:
		plane, ok = alignPlane(area / 2)
	case format.Subsampling420:
		plane, ok = alignPlane((aw / 2) * (ah / 2))
	default:
		return Layout{}, fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	chroma, ok := mul(plane, 2)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	size, ok := add(luma, chroma)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}

	return Layout{
		Width:      aw,
		Height:     ah,
		Stride:     aw,
		Size:       size,
		LumaSize:   luma,
		ChromaSize: chroma,
	}, nil
}

func computeRGB(w, h int, f format.PixelFormat) (Layout, error) {
	aw, ah, ok := alignedDims(w, h, format.AlignPixel)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	area, ok := mul(aw, ah)
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	size, ok := mul(area, f.BytesPerPixel())
	if !ok {
		return Layout{}, tooLarge(w, h, f)
	}
	return Layout{
		Width:  aw,
		Height: ah,
		Stride: aw,
		Size:   size,
	}, nil
}
