//go:build linux

package ion

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/internal/ioctl"
)

// DefaultPath is the ION device node.
const DefaultPath = "/dev/ion"

// ErrClosed is returned by operations on a closed Conn.
var ErrClosed = errors.New("ion: connection closed")

const magic = 'I'

type allocationData struct {
	Len        uintptr
	Align      uintptr
	HeapIDMask uint32
	Flags      uint32
	Handle     int32
}

type handleData struct {
	Handle int32
}

type fdData struct {
	Handle int32
	FD     int32
}

type physData struct {
	Handle int32
	Phys   uintptr
}

var (
	reqAlloc  = ioctl.IOWR(magic, 0, unsafe.Sizeof(allocationData{}))
	reqFree   = ioctl.IOWR(magic, 1, unsafe.Sizeof(handleData{}))
	reqShare  = ioctl.IOWR(magic, 4, unsafe.Sizeof(fdData{}))
	reqImport = ioctl.IOWR(magic, 5, unsafe.Sizeof(fdData{}))
	reqPhys   = ioctl.IOWR(magic, 8, unsafe.Sizeof(physData{}))
)

// Options configures a Device.
type Options struct {
	// Path is the ION device node.
	// Default: DefaultPath
	Path string

	// Flags are passed with every allocation (cache attributes).
	// Default: 0
	Flags uint32
}

// DefaultOptions returns the options for the standard device node.
func DefaultOptions() Options {
	return Options{Path: DefaultPath}
}

// Device opens connections to one ION node.
type Device struct {
	opts Options
}

var _ gralloc.ContiguousAllocator = (*Device)(nil)

// New returns a Device for opts. Nothing is opened until Open.
func New(opts Options) *Device {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	return &Device{opts: opts}
}

// Path returns the device node this Device opens.
func (d *Device) Path() string { return d.opts.Path }

// Open opens a new connection to the device.
func (d *Device) Open() (gralloc.ContiguousConn, error) {
	return d.OpenConn()
}

// OpenConn is Open with the concrete connection type.
func (d *Device) OpenConn() (*Conn, error) {
	fd, err := unix.Open(d.opts.Path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("ion: open %s: %w", d.opts.Path, err)
	}
	return &Conn{fd: fd, flags: d.opts.Flags}, nil
}

// Conn is one open ION client. It is safe for concurrent use; Close waits
// for in-flight requests.
type Conn struct {
	mu    sync.RWMutex
	fd    int
	flags uint32
}

var _ gralloc.ContiguousConn = (*Conn)(nil)

func (c *Conn) do(req uintptr, arg unsafe.Pointer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fd < 0 {
		return ErrClosed
	}
	return ioctl.Pointer(c.fd, req, arg)
}

// Alloc allocates size bytes aligned to align from the heaps in heapMask.
func (c *Conn) Alloc(size, align uintptr, heapMask uint32) (gralloc.BackendHandle, error) {
	data := allocationData{
		Len:        size,
		Align:      align,
		HeapIDMask: heapMask,
		Flags:      c.flags,
	}
	if err := c.do(reqAlloc, unsafe.Pointer(&data)); err != nil {
		return 0, fmt.Errorf("ion: alloc %d bytes (heaps %#x): %w", size, heapMask, err)
	}
	return gralloc.BackendHandle(data.Handle), nil
}

// Share exports h as a dma-buf descriptor.
func (c *Conn) Share(h gralloc.BackendHandle) (int, error) {
	data := fdData{Handle: int32(h)}
	if err := c.do(reqShare, unsafe.Pointer(&data)); err != nil {
		return -1, fmt.Errorf("ion: share handle %d: %w", h, err)
	}
	return int(data.FD), nil
}

// Phys returns the physical base address of h.
func (c *Conn) Phys(h gralloc.BackendHandle) (uintptr, error) {
	data := physData{Handle: int32(h)}
	if err := c.do(reqPhys, unsafe.Pointer(&data)); err != nil {
		return 0, fmt.Errorf("ion: phys handle %d: %w", h, err)
	}
	return data.Phys, nil
}

// Import returns a handle on this connection for a shared descriptor.
func (c *Conn) Import(fd int) (gralloc.BackendHandle, error) {
	data := fdData{FD: int32(fd)}
	if err := c.do(reqImport, unsafe.Pointer(&data)); err != nil {
		return 0, fmt.Errorf("ion: import fd %d: %w", fd, err)
	}
	return gralloc.BackendHandle(data.Handle), nil
}

// Free drops this connection's reference to h.
func (c *Conn) Free(h gralloc.BackendHandle) error {
	data := handleData{Handle: int32(h)}
	if err := c.do(reqFree, unsafe.Pointer(&data)); err != nil {
		return fmt.Errorf("ion: free handle %d: %w", h, err)
	}
	return nil
}

// Close closes the connection. Handles not freed are released by the kernel.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(c.fd)
	c.fd = -1
	if err != nil {
		return fmt.Errorf("ion: close: %w", err)
	}
	return nil
}
