//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gralloc/gralloc/format"
)

func init() {
	rootCmd.AddCommand(newFormatsCmd())
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the pixel formats the allocator can lay out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormats()
		},
	}
}

type formatInfo struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	BytesPerPixel int    `json:"bytes_per_pixel,omitempty"`
	Subsampling   string `json:"subsampling,omitempty"`
}

func subsamplingName(s format.Subsampling) string {
	switch s {
	case format.Subsampling422:
		return "4:2:2"
	case format.Subsampling420:
		return "4:2:0"
	default:
		return ""
	}
}

func runFormats() error {
	var out []formatInfo
	for _, f := range format.PixelFormats() {
		out = append(out, formatInfo{
			Name:          f.String(),
			Value:         fmt.Sprintf("%#x", int32(f)),
			BytesPerPixel: f.BytesPerPixel(),
			Subsampling:   subsamplingName(f.Subsampling()),
		})
	}
	if jsonOut {
		return printJSON(out)
	}

	for _, fi := range out {
		if fi.Subsampling != "" {
			printInfo("  %-14s %-12s YUV %s\n", fi.Name, fi.Value, fi.Subsampling)
		} else {
			printInfo("  %-14s %-12s %d bpp\n", fi.Name, fi.Value, fi.BytesPerPixel)
		}
	}
	return nil
}
