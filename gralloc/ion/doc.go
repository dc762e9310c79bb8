// Package ion is a client for the Linux ION contiguous-memory allocator.
//
// A Device names the ION node; each Open call returns a Conn with its own
// file descriptor. Conn implements gralloc.ContiguousConn:
//
//	dev := ion.New(ion.DefaultOptions())
//	conn, err := dev.Open()
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//	h, err := conn.Alloc(size, 4096, gralloc.DefaultContiguousHeapMask)
//
// # Kernel interface
//
// The request structures follow the ION uapi with integer user handles.
// The physical-address query is the i.MX vendor extension ION_IOC_PHYS
// (nr 8); kernels without it fail Phys with ENOTTY.
package ion
