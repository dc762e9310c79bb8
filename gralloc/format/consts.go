package format

const (
	// PixelAlign is the row and column alignment for packed RGB formats.
	PixelAlign = 32

	// YUVAlign is the width and height alignment for planar and
	// semi-planar YUV formats.
	YUVAlign = 64

	// PlaneAlign is the byte alignment of every YUV plane size.
	PlaneAlign = 4096

	// FramebufferRowAlign is the line alignment of one framebuffer slot.
	FramebufferRowAlign = 128

	// DefaultPageSize is used when the host page size is unknown.
	DefaultPageSize = 4096

	// MaxFramebufferSlots bounds the slot bitmap (one uint32).
	MaxFramebufferSlots = 32
)
