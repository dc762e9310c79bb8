//go:build linux

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/gralloc/format"
	"github.com/joshuapare/gralloc/gralloc/platform"
)

var (
	allocUsage string
	allocCount int
	allocFill  bool
)

func init() {
	rootCmd.AddCommand(newAllocCmd())
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <width> <height> <format>",
		Short: "Allocate buffers through the real backends and free them again",
		Long: `The alloc command opens the gpu0 device, allocates --count buffers with
the given usage, reports where each one came from and frees them all.

Usage flags are names joined by "|" or "," (HW_TEXTURE|HW_2D, SW_READ_OFTEN,
HW_FB) or hex values.

Example:
  grallocctl alloc 640 480 RGBA_8888 --usage HW_TEXTURE
  grallocctl alloc 1024 768 RGB_565 --usage HW_FB --count 3
  grallocctl alloc 176 144 YCbCr_420_SP --usage HW_2D --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	cmd.Flags().StringVarP(&allocUsage, "usage", "u", "SW_READ_OFTEN|SW_WRITE_OFTEN", "Usage flags")
	cmd.Flags().IntVarP(&allocCount, "count", "n", 1, "Number of buffers to allocate")
	cmd.Flags().BoolVar(&allocFill, "fill", false, "Map each heap buffer and write a test pattern")
	addDeviceFlags(cmd)
	return cmd
}

// bufferResult describes one allocated buffer.
type bufferResult struct {
	FD      int    `json:"fd"`
	Size    int    `json:"size"`
	Stride  int    `json:"stride"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Flags   string `json:"flags"`
	Backend string `json:"backend"`
	Offset  uint64 `json:"offset,omitempty"`
	Phys    uint64 `json:"phys,omitempty"`
}

type allocResult struct {
	Format  string         `json:"format"`
	Usage   string         `json:"usage"`
	Buffers []bufferResult `json:"buffers"`
	Error   string         `json:"error,omitempty"`
	Stats   gralloc.Stats  `json:"stats"`
}

func backendName(h *gralloc.BufferHandle) string {
	switch {
	case h.IsFramebuffer():
		return "framebuffer"
	case h.Flags.Has(gralloc.FlagUsesContiguous):
		return "ion"
	default:
		return "ashmem"
	}
}

func runAlloc(args []string) error {
	w, h, f, err := parseBufferArgs(args)
	if err != nil {
		return err
	}
	usage, err := format.ParseUsage(allocUsage)
	if err != nil {
		return err
	}
	if allocCount < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", allocCount)
	}

	p := platform.Open(platformOptions())
	defer p.Close()

	dev, err := p.Module.OpenDevice(gralloc.DeviceGPU0)
	if err != nil {
		return err
	}

	res := allocResult{Format: f.String(), Usage: usage.String()}
	var handles []*gralloc.BufferHandle
	var allocErr error
	for i := 0; i < allocCount; i++ {
		hnd, stride, err := dev.Alloc(w, h, f, usage)
		if err != nil {
			allocErr = fmt.Errorf("buffer %d: %w", i, err)
			break
		}
		if allocFill && !hnd.IsFramebuffer() {
			if err := fillPattern(hnd, byte(i)); err != nil {
				allocErr = fmt.Errorf("buffer %d: %w", i, err)
				handles = append(handles, hnd)
				break
			}
		}
		handles = append(handles, hnd)
		res.Buffers = append(res.Buffers, bufferResult{
			FD:      hnd.Descriptor.FD(),
			Size:    hnd.Size,
			Stride:  stride,
			Width:   hnd.Width,
			Height:  hnd.Height,
			Flags:   hnd.Flags.String(),
			Backend: backendName(hnd),
			Offset:  uint64(hnd.Offset),
			Phys:    uint64(hnd.Phys),
		})
		printVerbose("Allocated %s\n", hnd)
	}
	res.Stats = p.Module.Stats()

	var freeErrs []error
	for _, hnd := range handles {
		if err := dev.Free(hnd); err != nil {
			freeErrs = append(freeErrs, err)
		}
	}
	if err := dev.Close(); err != nil {
		freeErrs = append(freeErrs, err)
	}
	if allocErr != nil {
		res.Error = allocErr.Error()
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printAllocText(res)
	}
	return errors.Join(allocErr, errors.Join(freeErrs...))
}

func printAllocText(res allocResult) {
	printInfo("\nAllocated %d buffer(s) (%s, usage %s):\n", len(res.Buffers), res.Format, res.Usage)
	for i, b := range res.Buffers {
		printInfo("  [%d] %-11s size=%d stride=%d %dx%d flags=%s", i, b.Backend, b.Size, b.Stride, b.Width, b.Height, b.Flags)
		if b.Phys != 0 {
			printInfo(" phys=%#x", b.Phys)
		}
		if b.Backend == "framebuffer" {
			printInfo(" offset=%#x", b.Offset)
		}
		printInfo("\n")
	}
	if res.Error != "" {
		printInfo("  stopped: %s\n", res.Error)
	}
	printStatsText(res.Stats)
}

func printStatsText(st gralloc.Stats) {
	printInfo("\nModule:\n")
	printInfo("  Contiguous: %s\n", st.Contiguous)
	if st.ContiguousError != "" {
		printInfo("    %s\n", st.ContiguousError)
	}
	if st.FramebufferMapped {
		printInfo("  Framebuffer: %d slot(s) of %d bytes, mask %#x\n", st.NumBuffers, st.SlotSize, st.BufferMask)
	} else {
		printInfo("  Framebuffer: not mapped\n")
	}
}
