//go:build linux

// Package ioctl builds Linux ioctl request numbers and issues raw ioctls
// against device nodes (ION, ashmem, fbdev).
package ioctl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	dirWrite = 0x1
	dirRead  = 0x2

	nrBits   = 8
	typeBits = 8
	sizeBits = 14

	nrShift   = 0
	typeShift = nrShift + nrBits
	sizeShift = typeShift + typeBits
	dirShift  = sizeShift + sizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<dirShift | typ<<typeShift | nr<<nrShift | size<<sizeShift
}

// IOW encodes a request the kernel reads size bytes from.
func IOW(typ, nr, size uintptr) uintptr { return ioc(dirWrite, typ, nr, size) }

// IOWR encodes a bidirectional request.
func IOWR(typ, nr, size uintptr) uintptr { return ioc(dirRead|dirWrite, typ, nr, size) }

// Pointer issues req on fd with arg pointing at a request structure.
func Pointer(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Value issues req on fd with an integer argument.
func Value(fd int, req uintptr, arg uintptr) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return -1, errno
	}
	return int(r), nil
}
