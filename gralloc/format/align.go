package format

// Alignment utilities for buffer layouts.
// Every helper rounds up to a power-of-two boundary, so a value that is
// already aligned is returned unchanged.

// Align returns n rounded up to the next multiple of a.
// a must be a power of two.
//
// Example:
//
//	Align(1, 32)    = 32
//	Align(640, 32)  = 640
//	Align(176, 64)  = 192
func Align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// AlignPixel returns n aligned to PixelAlign, the packed-RGB row and
// column alignment of the display engine.
//
// Example:
//
//	AlignPixel(1)   = 32
//	AlignPixel(480) = 480
//	AlignPixel(481) = 512
func AlignPixel(n int) int {
	return Align(n, PixelAlign)
}

// AlignYUV returns n aligned to YUVAlign (64 pixels).
// Aligning both dimensions to 64 makes the luma area a multiple of 4096,
// which keeps the chroma plane page aligned.
func AlignYUV(n int) int {
	return Align(n, YUVAlign)
}

// AlignPlane returns n aligned to PlaneAlign (4096 bytes).
func AlignPlane(n int) int {
	return Align(n, PlaneAlign)
}

// AlignFramebufferRows returns n aligned to FramebufferRowAlign (128 lines).
// Used for the height of one framebuffer slot.
func AlignFramebufferRows(n int) int {
	return Align(n, FramebufferRowAlign)
}

// AlignPage returns n aligned to the given page size.
//
// Example:
//
//	AlignPage(1, 4096)    = 4096
//	AlignPage(4096, 4096) = 4096
//	AlignPage(4097, 4096) = 8192
func AlignPage(n, pageSize int) int {
	return Align(n, pageSize)
}
