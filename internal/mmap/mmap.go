//go:build unix

// Package mmap maps buffer descriptors into the process and tears the
// mappings down again.
package mmap

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of fd read-write and shared.
func Map(fd int, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: map fd %d (%d bytes): %w", fd, size, err)
	}
	return data, nil
}

// Unmap releases a mapping returned by Map.
// Unmapping an already released mapping is a no-op.
func Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}

// Addr returns the virtual address of the first byte of data, or 0 for an
// empty slice.
func Addr(data []byte) uintptr {
	if len(data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&data[0]))
}
