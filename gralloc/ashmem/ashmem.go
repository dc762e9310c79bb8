//go:build linux

// Package ashmem creates anonymous shared memory regions for heap buffers.
//
// On Android the regions come from /dev/ashmem. Kernels without ashmem get
// a memfd of the same size instead, unless the fallback is disabled.
package ashmem

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/internal/ioctl"
	"github.com/joshuapare/gralloc/internal/logger"
)

// DefaultPath is the ashmem device node.
const DefaultPath = "/dev/ashmem"

// NameLen is the size of the kernel's name buffer, terminator included.
const NameLen = 256

// ErrInvalidSize is returned for regions of zero or negative size.
var ErrInvalidSize = errors.New("ashmem: invalid region size")

const magic = 0x77

// memfdNameMax is the longest name memfd_create accepts.
const memfdNameMax = 249

var (
	reqSetName = ioctl.IOW(magic, 1, NameLen)
	reqSetSize = ioctl.IOW(magic, 3, unsafe.Sizeof(uintptr(0)))
)

// Options configures an Allocator.
type Options struct {
	// Path is the ashmem device node.
	// Default: DefaultPath
	Path string

	// DisableMemfd turns off the memfd fallback when Path does not exist.
	// Default: false
	DisableMemfd bool

	// Logger receives fallback notices.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns the options for the standard device node.
func DefaultOptions() Options {
	return Options{Path: DefaultPath}
}

// Allocator implements gralloc.SharedMemory.
type Allocator struct {
	opts Options
}

var _ gralloc.SharedMemory = (*Allocator)(nil)

// New returns an Allocator for opts.
func New(opts Options) *Allocator {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	return &Allocator{opts: opts}
}

func (a *Allocator) log() *slog.Logger {
	if a.opts.Logger != nil {
		return a.opts.Logger
	}
	return logger.L
}

// CreateRegion returns a descriptor for a new region of size bytes named
// name. Names longer than NameLen-1 bytes are truncated.
func (a *Allocator) CreateRegion(name string, size int) (int, error) {
	if size <= 0 {
		return -1, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	fd, err := unix.Open(a.opts.Path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if errors.Is(err, unix.ENOENT) && !a.opts.DisableMemfd {
		a.log().Debug("ashmem missing, using memfd", "path", a.opts.Path, "name", name, "size", size)
		return createMemfd(name, size)
	}
	if err != nil {
		return -1, fmt.Errorf("ashmem: open %s: %w", a.opts.Path, err)
	}

	if err := setName(fd, name); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("ashmem: set name %q: %w", name, err)
	}
	if _, err := ioctl.Value(fd, reqSetSize, uintptr(size)); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("ashmem: set size %d: %w", size, err)
	}
	return fd, nil
}

func setName(fd int, name string) error {
	var buf [NameLen]byte
	copy(buf[:NameLen-1], name)
	return ioctl.Pointer(fd, reqSetName, unsafe.Pointer(&buf))
}

func createMemfd(name string, size int) (int, error) {
	if len(name) > memfdNameMax {
		name = name[:memfdNameMax]
	}
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("ashmem: memfd %q: %w", name, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("ashmem: memfd size %d: %w", size, err)
	}
	return fd, nil
}
