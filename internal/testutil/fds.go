//go:build linux

package testutil

import (
	"testing"

	"golang.org/x/sys/unix"
)

// NewMemfd returns a memfd of size bytes. It is closed when the test ends
// unless the caller closed it first.
func NewMemfd(t testing.TB, name string, size int) int {
	t.Helper()
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		t.Fatalf("memfd_create: %v", err)
	}
	if size > 0 {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			unix.Close(fd)
			t.Fatalf("ftruncate: %v", err)
		}
	}
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

// FDOpen reports whether fd refers to an open descriptor.
func FDOpen(fd int) bool {
	if fd < 0 {
		return false
	}
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

// SameFile reports whether two descriptors refer to the same open file.
func SameFile(a, b int) bool {
	var sa, sb unix.Stat_t
	if unix.Fstat(a, &sa) != nil || unix.Fstat(b, &sb) != nil {
		return false
	}
	return sa.Dev == sb.Dev && sa.Ino == sb.Ino
}
