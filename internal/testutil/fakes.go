//go:build linux

package testutil

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
)

// ErrFake is the default error returned by injected failures.
var ErrFake = errors.New("testutil: injected failure")

// FakeContiguous is an in-memory ION service. Shared descriptors are real
// memfds so descriptor ownership can be checked.
type FakeContiguous struct {
	mu sync.Mutex

	// Injected failures.
	OpenErr  error
	AllocErr error
	ShareErr error
	PhysErr  error
	PhysZero bool

	Opens   int // Open calls
	Closes  int // Close calls across connections
	Allocs  int // successful Alloc calls
	Frees   int // Free calls
	Imports int // successful Import calls

	nextHandle gralloc.BackendHandle
	nextPhys   uintptr
	live       map[gralloc.BackendHandle]*fakeAlloc
	shared     map[int]*fakeAlloc // shared fd -> allocation
}

type fakeAlloc struct {
	size uintptr
	phys uintptr
}

// NewFakeContiguous returns a working fake.
func NewFakeContiguous() *FakeContiguous {
	return &FakeContiguous{
		nextPhys: 0x80000000,
		live:     make(map[gralloc.BackendHandle]*fakeAlloc),
		shared:   make(map[int]*fakeAlloc),
	}
}

func (f *FakeContiguous) Open() (gralloc.ContiguousConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Opens++
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	return &fakeConn{f: f}, nil
}

// LiveHandles returns the number of allocation handles not yet freed.
func (f *FakeContiguous) LiveHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

// Counts returns Opens, Allocs and Frees under the lock.
func (f *FakeContiguous) Counts() (opens, allocs, frees int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Opens, f.Allocs, f.Frees
}

type fakeConn struct {
	f      *FakeContiguous
	closed bool
}

func (c *fakeConn) Alloc(size, align uintptr, heapMask uint32) (gralloc.BackendHandle, error) {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AllocErr != nil {
		return 0, f.AllocErr
	}
	if size == 0 || align == 0 || size%align != 0 || heapMask == 0 {
		return 0, unix.EINVAL
	}
	f.nextHandle++
	f.live[f.nextHandle] = &fakeAlloc{size: size, phys: f.nextPhys}
	f.nextPhys += size
	f.Allocs++
	return f.nextHandle, nil
}

func (c *fakeConn) Share(h gralloc.BackendHandle) (int, error) {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ShareErr != nil {
		return -1, f.ShareErr
	}
	a, ok := f.live[h]
	if !ok {
		return -1, unix.EINVAL
	}
	fd, err := unix.MemfdCreate("fake-ion", unix.MFD_CLOEXEC)
	if err != nil {
		return -1, err
	}
	if err := unix.Ftruncate(fd, int64(a.size)); err != nil {
		unix.Close(fd)
		return -1, err
	}
	f.shared[fd] = a
	return fd, nil
}

func (c *fakeConn) Phys(h gralloc.BackendHandle) (uintptr, error) {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PhysErr != nil {
		return 0, f.PhysErr
	}
	if f.PhysZero {
		return 0, nil
	}
	a, ok := f.live[h]
	if !ok {
		return 0, unix.EINVAL
	}
	return a.phys, nil
}

func (c *fakeConn) Import(fd int) (gralloc.BackendHandle, error) {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.shared[fd]
	if !ok {
		return 0, fmt.Errorf("import fd %d: %w", fd, unix.EINVAL)
	}
	f.nextHandle++
	f.live[f.nextHandle] = a
	f.Imports++
	return f.nextHandle, nil
}

func (c *fakeConn) Free(h gralloc.BackendHandle) error {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Frees++
	if _, ok := f.live[h]; !ok {
		return unix.EINVAL
	}
	delete(f.live, h)
	return nil
}

func (c *fakeConn) Close() error {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.closed {
		return unix.EBADF
	}
	c.closed = true
	f.Closes++
	return nil
}

// FakeSharedMemory creates memfd regions and records each request.
type FakeSharedMemory struct {
	mu    sync.Mutex
	Err   error
	Calls []Region
}

// Region is one CreateRegion request.
type Region struct {
	Name string
	Size int
	FD   int
}

func (s *FakeSharedMemory) CreateRegion(name string, size int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return -1, s.Err
	}
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return -1, err
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return -1, err
	}
	s.Calls = append(s.Calls, Region{Name: name, Size: size, FD: fd})
	return fd, nil
}

// Count returns the number of successful CreateRegion calls.
func (s *FakeSharedMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// FakeFramebuffer hands out a fixed Framebuffer description backed by a memfd.
type FakeFramebuffer struct {
	mu    sync.Mutex
	FB    gralloc.Framebuffer
	Err   error
	Calls int
}

// Framebuffer geometry used by NewFakeFramebuffer.
const (
	FakeFramebufferBase = 0x40000000
	FakeFramebufferPhys = 0x90000000
	FakeLineLength      = 640 * 2
	FakeYRes            = 480
)

// NewFakeFramebuffer returns a mapper for a 640x480 RGB565 panel with n
// slots. The descriptor is a memfd owned by the test.
func NewFakeFramebuffer(t testing.TB, n uint32) *FakeFramebuffer {
	t.Helper()
	fb := gralloc.Framebuffer{
		Base:       FakeFramebufferBase,
		Phys:       FakeFramebufferPhys,
		LineLength: FakeLineLength,
		YRes:       FakeYRes,
		NumBuffers: n,
	}
	fb.FD = NewMemfd(t, "fake-fb", int(fb.BufferSize())*int(n))
	return &FakeFramebuffer{FB: fb}
}

func (f *FakeFramebuffer) MapFramebuffer() (*gralloc.Framebuffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	fb := f.FB
	return &fb, nil
}

// CallCount returns the number of MapFramebuffer calls.
func (f *FakeFramebuffer) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// RecordingTerminator records every handle passed to TerminateBuffer.
type RecordingTerminator struct {
	mu      sync.Mutex
	Err     error
	Handles []*gralloc.BufferHandle
}

func (r *RecordingTerminator) TerminateBuffer(h *gralloc.BufferHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Handles = append(r.Handles, h)
	return r.Err
}
