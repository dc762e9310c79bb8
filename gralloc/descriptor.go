package gralloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Ownership records where a handle's descriptor came from.
type Ownership uint8

const (
	// Owned descriptors were created for this buffer alone.
	Owned Ownership = iota

	// Duplicated descriptors are dups of a shared source (the framebuffer
	// device). Closing one never affects the source.
	Duplicated
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Duplicated:
		return "duplicated"
	default:
		return fmt.Sprintf("Ownership(%d)", uint8(o))
	}
}

// Descriptor is a file descriptor exclusively held by one BufferHandle.
// The zero value is not valid; use OwnDescriptor or DuplicateDescriptor.
type Descriptor struct {
	fd  int
	own Ownership
}

// OwnDescriptor takes ownership of fd.
func OwnDescriptor(fd int) Descriptor {
	return Descriptor{fd: fd, own: Owned}
}

// DuplicateDescriptor dups src. The caller keeps ownership of src.
func DuplicateDescriptor(src int) (Descriptor, error) {
	fd, err := unix.Dup(src)
	if err != nil {
		return Descriptor{fd: -1}, fmt.Errorf("gralloc: dup fd %d: %w", src, err)
	}
	unix.CloseOnExec(fd)
	return Descriptor{fd: fd, own: Duplicated}, nil
}

// FD returns the descriptor number, or -1 once closed.
func (d *Descriptor) FD() int { return d.fd }

// Ownership reports how the descriptor was obtained.
func (d *Descriptor) Ownership() Ownership { return d.own }

// Valid reports whether the descriptor is still open.
func (d *Descriptor) Valid() bool { return d.fd >= 0 }

// Close closes the descriptor once. Later calls are no-ops.
func (d *Descriptor) Close() error {
	if d.fd < 0 {
		return nil
	}
	fd := d.fd
	d.fd = -1
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("gralloc: close %s fd %d: %w", d.own, fd, err)
	}
	return nil
}
