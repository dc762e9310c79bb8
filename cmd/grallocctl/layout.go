//go:build linux

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gralloc/gralloc/format"
	"github.com/joshuapare/gralloc/gralloc/layout"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <width> <height> <format>",
		Short: "Compute the aligned layout of a buffer",
		Long: `The layout command prints the aligned dimensions, row stride and byte
sizes the allocator would use for a buffer. Nothing is allocated.

Formats are given by name (RGBA_8888, YCbCr_420_SP, ...) or enumerator (0x104).

Example:
  grallocctl layout 640 480 RGBA_8888
  grallocctl layout 176 144 YCbCr_420_SP --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(args)
		},
	}
	return cmd
}

// layoutResult is the JSON shape of a layout.
type layoutResult struct {
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Stride     int    `json:"stride"`
	Size       int    `json:"size"`
	LumaSize   int    `json:"luma_size,omitempty"`
	ChromaSize int    `json:"chroma_size,omitempty"`
}

// parseBufferArgs parses <width> <height> <format>.
func parseBufferArgs(args []string) (int, int, format.PixelFormat, error) {
	w, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid width %q: %w", args[0], err)
	}
	h, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid height %q: %w", args[1], err)
	}
	f, err := format.ParsePixelFormat(args[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return w, h, f, nil
}

func runLayout(args []string) error {
	w, h, f, err := parseBufferArgs(args)
	if err != nil {
		return err
	}

	l, err := layout.Compute(w, h, f)
	if err != nil {
		return fmt.Errorf("failed to compute layout: %w", err)
	}

	res := layoutResult{
		Format:     f.String(),
		Width:      l.Width,
		Height:     l.Height,
		Stride:     l.Stride,
		Size:       l.Size,
		LumaSize:   l.LumaSize,
		ChromaSize: l.ChromaSize,
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nLayout (%dx%d %s):\n", w, h, res.Format)
	printInfo("  Aligned: %dx%d\n", res.Width, res.Height)
	printInfo("  Stride:  %d pixels\n", res.Stride)
	printInfo("  Size:    %d bytes\n", res.Size)
	if f.IsYUV() {
		printInfo("  Luma:    %d bytes\n", res.LumaSize)
		printInfo("  Chroma:  %d bytes (offset %d)\n", res.ChromaSize, res.LumaSize)
	}
	return nil
}
