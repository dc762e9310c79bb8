//go:build linux

package main

import (
	"fmt"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/internal/mmap"
)

// fillPattern maps a heap buffer, writes seed-derived bytes and reads them
// back. The mapping is left on the handle so Free tears it down.
func fillPattern(h *gralloc.BufferHandle, seed byte) error {
	data, err := mmap.Map(h.Descriptor.FD(), h.Size)
	if err != nil {
		return err
	}
	h.Mapping = data
	h.Base = mmap.Addr(data)

	for i := range data {
		data[i] = seed ^ byte(i)
	}
	for i, b := range data {
		if b != seed^byte(i) {
			return fmt.Errorf("pattern mismatch at byte %d", i)
		}
	}
	return nil
}
