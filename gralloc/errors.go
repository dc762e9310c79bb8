package gralloc

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	// ErrInvalidArgument indicates a bad request: unknown format, bad
	// dimensions, or an unknown device name.
	ErrInvalidArgument = errors.New("gralloc: invalid argument")

	// ErrOutOfMemory indicates a backend could not provide the memory.
	ErrOutOfMemory = errors.New("gralloc: out of memory")

	// ErrOutOfBufferSlots indicates every framebuffer slot is in use.
	// It matches ErrOutOfMemory with errors.Is.
	ErrOutOfBufferSlots = &slotsError{}

	// ErrBackendUnavailable indicates a required backend could not be
	// reached and no fallback was permitted.
	ErrBackendUnavailable = errors.New("gralloc: backend unavailable")

	// ErrPhysicalAddressUnavailable indicates the contiguous backend
	// returned no physical address for an allocation.
	ErrPhysicalAddressUnavailable = errors.New("gralloc: physical address unavailable")

	// ErrInvalidHandle indicates a handle failed structural validation or
	// was already freed.
	ErrInvalidHandle = errors.New("gralloc: invalid handle")

	// ErrDeviceClosed indicates an operation on a closed Device.
	ErrDeviceClosed = errors.New("gralloc: device closed")
)

type slotsError struct{}

func (*slotsError) Error() string { return "gralloc: out of framebuffer slots" }

func (*slotsError) Is(target error) bool { return target == ErrOutOfMemory }

// Errno maps err to the negative errno value a HAL caller expects.
// A nil error maps to 0.
func Errno(err error) int {
	if err == nil {
		return 0
	}

	var errno unix.Errno
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidHandle):
		return -int(unix.EINVAL)
	case errors.Is(err, ErrOutOfMemory):
		return -int(unix.ENOMEM)
	case errors.Is(err, ErrPhysicalAddressUnavailable):
		return -int(unix.EFAULT)
	case errors.Is(err, ErrBackendUnavailable):
		if errors.As(err, &errno) && errno != 0 {
			return -int(errno)
		}
		return -int(unix.ENODEV)
	case errors.Is(err, ErrDeviceClosed):
		return -int(unix.ENODEV)
	case errors.As(err, &errno) && errno != 0:
		return -int(errno)
	}
	return -int(unix.EIO)
}
