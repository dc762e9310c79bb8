//go:build linux

package fbdev

import (
	"bytes"
	"unsafe"

	"github.com/joshuapare/gralloc/internal/ioctl"
)

// Layouts of struct fb_fix_screeninfo and struct fb_var_screeninfo.

type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MMIOStart    uintptr
	MMIOLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

func (f *fixScreenInfo) id() string {
	id := f.ID[:]
	if i := bytes.IndexByte(id, 0); i >= 0 {
		id = id[:i]
	}
	return string(id)
}

type bitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitfield
	Green        bitfield
	Blue         bitfield
	Transp       bitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HSyncLen     uint32
	VSyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// Request numbers predate _IOC encoding and are plain constants.
const (
	reqGetVScreenInfo = 0x4600
	reqPutVScreenInfo = 0x4601
	reqGetFScreenInfo = 0x4602
)

const (
	activateNow   = 0
	activateForce = 128
)

func getVar(fd int, v *varScreenInfo) error {
	return ioctl.Pointer(fd, reqGetVScreenInfo, unsafe.Pointer(v))
}

func putVar(fd int, v *varScreenInfo) error {
	return ioctl.Pointer(fd, reqPutVScreenInfo, unsafe.Pointer(v))
}

func getFix(fd int, f *fixScreenInfo) error {
	return ioctl.Pointer(fd, reqGetFScreenInfo, unsafe.Pointer(f))
}
